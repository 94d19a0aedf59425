package client

import (
	"fmt"
	"strings"

	"github.com/blogforge/api/internal/model"
)

const researchSystemPrompt = `Role: meticulous research assistant.
Goal: Return *real* papers for the given topic, conforming to the provided JSON Schema.

Selection rubric (optimize for blog storytelling and evidence quality):
  1) Evidence hierarchy: meta-analyses > RCTs > others.
  2) Prefer papers that report concrete outcome metrics (e.g., AUROC, sensitivity %, error reduction).
  3) Prefer papers with clear clinical settings and populations; geographic diversity is a plus.
  4) Avoid domain duplicates if possible (imaging, CDS, remote monitoring, surgery, admin ops).
  5) Fill ALL fields; be conservative with evidence_type when uncertain.
Return ONLY the structured result.`

func buildResearchUserPrompt(topic string, paperCount int) string {
	return fmt.Sprintf("Return EXACTLY %d papers.\nTopic: %s", paperCount, topic)
}

func buildBlogSystemPrompt(opts model.GenerateRequest) string {
	var b strings.Builder

	tone := "Conversational, second-person (\"you\"), approachable and clear."
	switch opts.Tone {
	case model.ToneProfessional:
		tone = "Professional and polished, third-person, confident but plain."
	case model.ToneAcademic:
		tone = "Academic register: precise terminology, measured claims, formal structure."
	}

	fmt.Fprintf(&b, `You are a knowledgeable, friendly blog writer for a general online audience.

Output ONLY valid JSON matching the schema. No extra text.

STYLE & TONE:
- %s
- Short paragraphs (2-3 sentences), subheadings every ~120-150 words.
- Avoid jargon; define any necessary terms briefly and simply.

STRUCTURE inside body_md (Markdown):
1. Start with a compelling HOOK in the first 40-60 words.
2. Insert a **Key Takeaways** section (3-5 bullet points).
`, tone)

	section := 3
	if opts.IncludeExamples {
		fmt.Fprintf(&b, "%d. Add a \"Real-World Spotlights\" section: 3 brief, story-like vignettes tied to your research papers.\n", section)
		section++
	}
	if opts.IncludeStatistics {
		fmt.Fprintf(&b, "%d. Include a **By the Numbers** callout: memorable statistics from the research.\n", section)
		section++
	}
	if opts.IncludeFAQ {
		fmt.Fprintf(&b, "%d. Add a **Frequently Asked Questions** (FAQ) section: 3 Q&A entries.\n", section)
		section++
	}
	fmt.Fprintf(&b, "%d. Provide a \"**What This Means for You**\" section: 3 practical suggestions.\n", section)
	fmt.Fprintf(&b, "%d. End with a **## References** list: numbered 1..n referencing the 'references' array.\n", section+1)
	fmt.Fprintf(&b, "%d. Conclude with a one-sentence Call-to-Action.\n", section+2)

	fmt.Fprintf(&b, `
CITATIONS:
- Use inline numeric citations [1]..[n] that map to items in "references".
- Do not invent sources; leave claims un-cited if no reference exists.

LENGTH:
- Target %d-%d words total in the body_md.`, opts.WordCount-100, opts.WordCount+100)

	return b.String()
}

func buildBlogUserPrompt(research *model.ResearchData, researchJSON []byte) string {
	return fmt.Sprintf("Topic: %s\nResearch JSON:\n%s", research.Topic, researchJSON)
}
