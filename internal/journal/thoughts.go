package journal

var promptThoughts = []string{
	"Jag vill göra något som blir kvar.",
	"Det räcker att jag öppnar detta ibland.",
	"Idag är en dag som bara händer en gång.",
	"Jag vill känna att jag rör mig framåt, även om det är små steg.",
	"Jag vill göra något som känns kul igen.",
	"Jag kan bygga vad som helst – jag behöver bara börja.",
	"Jag fastnar ibland, men jag ger mig inte.",
	"En liten grej är fortfarande en grej.",
	"Jag vill göra saker som känns som jag.",
	"Ibland är det bästa att bara skriva en rad och spara.",
}

// PromptThoughts returns a copy of the built-in prompt list.
func PromptThoughts() []string {
	prompts := make([]string, len(promptThoughts))
	copy(prompts, promptThoughts)
	return prompts
}

func pickThought(pick func(n int) int) string {
	index := pick(len(promptThoughts))
	if index < 0 || index >= len(promptThoughts) {
		index = 0
	}
	return promptThoughts[index]
}
