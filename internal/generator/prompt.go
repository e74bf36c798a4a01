package generator

import (
	"fmt"
	"strings"

	"github.com/docify-online/docify-go/internal/rag"
)

// systemFraming establishes the assistant's persona and the boundaries of its
// medical guidance. It is prepended to every generation prompt.
const systemFraming = `You are a helpful medical assistant chatbot for Docify Online.

**About Docify:**
Docify is an online platform that allows users to consult certified doctors
from the comfort of their home for health concerns and medical certificates.

**Your Role:**
- Provide general health information and guidance about common symptoms
- Answer questions about Docify's services and features
- Help users understand when to seek professional medical consultation
- Be friendly, informative, and supportive

**Guidelines:**
- Provide helpful information about common health concerns like fever, cold, cough, headaches, etc.
- For serious symptoms or diagnosis requests, recommend submitting a consultation form on the dashboard
- Do NOT prescribe medications or provide specific medical diagnoses
- Keep responses concise, clear, and friendly (2-4 sentences)
- For unrelated questions (sports, weather, etc.), politely redirect to health/platform topics`

// BuildPrompt assembles the full generation prompt in a fixed order: the
// system framing, then numbered context excerpts, then the optional symptoms
// section, then the user query. Passing no documents simply omits the context
// block, so the same builder serves both grounded and ungrounded calls.
func BuildPrompt(query, symptoms string, docs []rag.Document) string {
	var sb strings.Builder
	sb.WriteString(systemFraming)
	sb.WriteString("\n\n")

	if len(docs) > 0 {
		sb.WriteString("**Context from FAQ:**\n")
		for i, doc := range docs {
			fmt.Fprintf(&sb, "Doc %d: %s\n", i+1, doc.Content)
		}
		sb.WriteString("\n")
	}

	if symptoms != "" {
		fmt.Fprintf(&sb, "**User Symptoms:** %s\nIncorporate these symptoms into your response if relevant.\n\n", symptoms)
	}

	fmt.Fprintf(&sb, "**User Query:** %s\n\nProvide a helpful, friendly response:", query)
	return sb.String()
}
