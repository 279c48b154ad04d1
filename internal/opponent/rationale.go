// internal/opponent/rationale.go
//
// Difficulty-tiered rationale text for opponent moves. Three independent
// style families (easy = playful, standard = plain justification, expert =
// dense technical justification), each with position-aware branching:
// foundation framing for the first word, building framing early, closure
// framing near the cap, and a random template from the tier's bank otherwise.
// Pure presentation: one sentence referencing the chosen word and the topic.

package opponent

import (
	"fmt"

	"github.com/promptduel/go-server/internal/game"
)

// rationale builds the Thought for a chosen word against the pre-commit state.
func (e *Engine) rationale(word string, st game.State) game.Thought {
	var explanation string
	switch st.Difficulty {
	case game.TierEasy:
		explanation = e.easyRationale(word, st)
	case game.TierExpert:
		explanation = e.expertRationale(word, st)
	default:
		explanation = e.standardRationale(word, st)
	}
	return game.Thought{Word: word, Explanation: explanation}
}

var easyEmojis = []string{"😊", "✨", "🌟", "🎉", "👍", "❤️"}

// easyRationale writes in a playful, child-like voice.
func (e *Engine) easyRationale(word string, st game.State) string {
	templates := []string{
		fmt.Sprintf("I picked %q because it sounds fun and makes my prompt super cool!", word),
		fmt.Sprintf("%q is a really nice word that makes my prompt about %s more colorful!", word, st.Topic),
		fmt.Sprintf("I like %q a lot! It makes my prompt happy and exciting!", word),
		fmt.Sprintf("%q is perfect here! It's like adding sprinkles to ice cream!", word),
		fmt.Sprintf("I chose %q because it's my favorite word right now! It makes everything better!", word),
	}

	var out string
	switch {
	case len(st.AIWords) == 0:
		out = fmt.Sprintf("I'm starting with %q because it's a super fun word for talking about %s!", word, st.Topic)
	case len(st.AIWords) < 3:
		out = fmt.Sprintf("I added %q because it goes really well with %q! They're best friends!", word, st.AIPrompt)
	case len(st.AIWords) >= st.MaxWordsPerSide-2:
		out = fmt.Sprintf("I'm finishing my prompt with %q because it makes everything sound amazing!", word)
	default:
		out = templates[e.rng.Intn(len(templates))]
	}

	if e.rng.Float64() > 0.5 {
		out += " " + easyEmojis[e.rng.Intn(len(easyEmojis))]
	}
	return out
}

// standardRationale gives a plain, direct justification.
func (e *Engine) standardRationale(word string, st game.State) string {
	templates := []string{
		fmt.Sprintf("I chose %q to enhance the clarity of my prompt about %s.", word, st.Topic),
		fmt.Sprintf("Adding %q helps create a more specific instruction for %s.", word, st.Topic),
		fmt.Sprintf("%q complements my previous words and adds necessary context for %s.", word, st.Topic),
		fmt.Sprintf("I selected %q to differentiate my approach from the player's prompt %q.", word, st.PlayerPrompt),
		fmt.Sprintf("%q is a strategic choice that addresses a key aspect of %s.", word, st.Topic),
	}

	switch {
	case len(st.AIWords) == 0:
		return fmt.Sprintf("I'm starting with %q as a foundation for my prompt about %s.", word, st.Topic)
	case len(st.AIWords) < 3:
		return fmt.Sprintf("I added %q to build upon %q for a stronger opening.", word, st.AIPrompt)
	case len(st.AIWords) >= st.MaxWordsPerSide-2:
		return fmt.Sprintf("I'm concluding my prompt with %q to finalize my instructions about %s.", word, st.Topic)
	default:
		return templates[e.rng.Intn(len(templates))]
	}
}

// expertRationale writes dense, technical justifications.
func (e *Engine) expertRationale(word string, st game.State) string {
	templates := []string{
		fmt.Sprintf("I've selected %q due to its semantic compatibility with the existing prompt structure and its capacity to enhance the conceptual framework of %s. This lexical choice optimizes the prompt's information density.", word, st.Topic),
		fmt.Sprintf("%q introduces a critical semantic dimension to the prompt, establishing a more nuanced conceptual relationship with the topic of %s. The syntactic placement is deliberate to maximize cognitive processing efficiency.", word, st.Topic),
		fmt.Sprintf("After analyzing multiple lexical alternatives, I determined that %q provides optimal semantic value through its polysemic properties and contextual relevance to %s, while maintaining syntactic coherence.", word, st.Topic),
		fmt.Sprintf("The inclusion of %q represents a calculated decision to enhance the prompt's pragmatic effectiveness. Its semantic field intersects precisely with the core conceptual requirements of %s.", word, st.Topic),
		fmt.Sprintf("%q was selected based on comprehensive linguistic analysis, as it exhibits superior semantic alignment with both the existing prompt elements and the target domain of %s. Its information-to-token ratio is exceptionally favorable.", word, st.Topic),
	}

	switch {
	case len(st.AIWords) == 0:
		return fmt.Sprintf("I've initiated the prompt construction with %q as it establishes an optimal semantic foundation for addressing %s. This initial lexical selection was made after evaluating multiple alternatives for their conceptual alignment and information value.", word, st.Topic)
	case len(st.AIWords) < 3:
		return fmt.Sprintf("Building upon the established semantic framework of %q, I've incorporated %q to introduce a critical conceptual dimension that enhances the prompt's specificity regarding %s. This selection optimizes the syntactic structure while maintaining maximum relevance.", st.AIPrompt, word, st.Topic)
	case len(st.AIWords) >= st.MaxWordsPerSide-2:
		return fmt.Sprintf("As I approach the conclusion of the prompt construction, I've selected %q to provide semantic closure and ensure comprehensive coverage of %s. This final lexical element was chosen specifically to complement the existing semantic structure while introducing necessary conceptual resolution.", word, st.Topic)
	default:
		return templates[e.rng.Intn(len(templates))]
	}
}
