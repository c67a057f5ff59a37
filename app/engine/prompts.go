package engine

import "fmt"

func systemPrompt(language string) string {
	return fmt.Sprintf(`You are a Senior Cloud Architect & Security Analyst specializing in AWS.

**Your Audience**: DevOps Engineers, CTOs, Cloud Architects, SREs
**Output Language**: %s
**Format**: Markdown with bold headers
**Tone**: Professional, direct, actionable

Your task is to analyze AWS updates and provide actionable insights that help teams make informed decisions.`, language)
}

func summarizePrompt(text string) string {
	return fmt.Sprintf(`Analyze this AWS update with precision and provide actionable insights:

**Required Structure**:
1. **Title**: Punchy 5-8 words capturing core value
2. **What**: 2-3 sentences explaining the technical change
3. **Why**: Business/technical impact (cost savings? security improvement? performance boost?)
4. **Impact Level**: Exactly ONE of [CRITICAL, HIGH, MEDIUM, LOW, INFO]
5. **Action Required**: Yes/No + brief action if Yes (max 1 sentence)

**Guidelines**:
- Be direct and avoid marketing fluff
- Use bullet points for clarity when listing multiple items
- Highlight specific numbers, percentages, and metrics
- Focus on practical implications for engineering teams
- Maximum 200 words total

**Now analyze this AWS update**:
%s`, text)
}

func digestPrompt(itemsText, language string) string {
	return fmt.Sprintf(`Analyze these AWS updates and create a prioritized smart digest with actionable categorization.

**Updates to Analyze**:
%s

**Categorization Rules** (assign each update to exactly ONE category):

1. **CRITICAL** - Immediate action required: security patches, CVEs, breaking changes, deprecations with deadlines. Include impact level, specific action, deadline.
2. **COST_OPTIMIZATION** - Money-saving opportunities: new pricing models, efficiency improvements. Include estimated savings and implementation complexity.
3. **NEW_FEATURES** - Capabilities worth exploring: new services, GA announcements, regional expansions. Include brief description and primary use case.
4. **GENERAL** - Informational updates, minor improvements, non-urgent announcements.

**Quality Guidelines**:
- Prioritize by business impact and urgency
- Be specific with actions (not "review" but "migrate X to Y by date Z")
- Maximum 500 words total
- Language: %s
- If no items fit CRITICAL or COST_OPTIMIZATION, state "None" for that category`, itemsText, language)
}
