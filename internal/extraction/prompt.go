package extraction

import (
	"fmt"
	"strings"

	"ai-receptionist/internal/calls"
)

// MaxRecentJobs bounds the history included in the prompt.
const MaxRecentJobs = 5

// ContractorContext is background about the contractor the caller reached.
type ContractorContext struct {
	ContractorID string
	Name         string
	RecentJobs   []calls.JobRecord
}

const systemPrompt = `You are the answering service for a home services contractor. Read the voicemail transcript and extract the job request. Your output must be ONLY a single JSON object with these keys, and no other text or markdown:

- "callerName": string or null
- "callerPhone": E.164 string, or null if not stated
- "issueType": one of "repair", "install", "inspect", "emergency", "quote", "other"
- "urgency": one of "low", "medium", "high", "emergency"
- "propertyAddress": string or null
- "description": short summary of the work, at most 500 characters
- "estimatedScope": string or null
- "confidence": number between 0 and 1, how sure you are this is a genuine job request

Rules:
- Never invent a name, address or scope that is not in the transcript; use null.
- Use "emergency" urgency only for active leaks, no heat, gas smell, electrical hazards or similar.
- Spam, wrong numbers and hang-ups get confidence below 0.3.`

// BuildPrompt returns the system and user messages for one extraction.
func BuildPrompt(transcript, callerPhone string, cc ContractorContext) (system, user string) {
	var sb strings.Builder
	sb.WriteString(systemPrompt)

	if cc.Name != "" {
		fmt.Fprintf(&sb, "\n\n[Contractor]\n%s", cc.Name)
	}
	if len(cc.RecentJobs) > 0 {
		sb.WriteString("\n\n[Recent jobs]")
		for i, j := range cc.RecentJobs {
			if i == MaxRecentJobs {
				break
			}
			issue := string(j.IssueType)
			if issue == "" {
				issue = string(j.Status)
			}
			fmt.Fprintf(&sb, "\n- %s %s: %s", j.CreatedAt.Format("2006-01-02"), issue, Truncate(j.Description, 120))
		}
	}

	user = fmt.Sprintf("Caller number: %s\n\nTranscript:\n%s", callerPhone, transcript)
	return sb.String(), user
}
