package conversation

import "github.com/amoghd24/footagents-ai-game/graph"

// ShouldSummarize routes to the summarization node once the transcript
// grows past threshold messages, and ends the run otherwise.
func ShouldSummarize(threshold int) graph.Router[State] {
	return func(s State) string {
		if len(s.Messages) > threshold {
			return NodeSummarizeConversation
		}
		return graph.END
	}
}
