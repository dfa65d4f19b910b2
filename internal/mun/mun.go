// Package mun holds the static Model UN reference material and the
// mentor persona used when prompting the AI model.
package mun

// Resources maps reference material names to their URLs.
func Resources() map[string]string {
	return map[string]string{
		"UNODC Cybercrime Module": "https://www.unodc.org/e4j/en/mun/crime-prevention/cybercrime.html",
		"Model UN Guide":          "https://www.un.org/en/model-united-nations",
		"Diplomacy Handbook":      "https://www.un.org/en/diplomacy",
		"Crisis Simulation Guide": "https://www.un.org/en/crisis-simulation",
	}
}

// Procedures maps parliamentary procedure names to short descriptions.
func Procedures() map[string]string {
	return map[string]string{
		"Points of Order":        "Used to address procedural errors during debate",
		"Right of Reply":         "Allows a delegate to respond to personal insults",
		"Suspension of Meeting":  "Temporarily pauses the meeting for consultations",
		"Adjournment of Meeting": "Ends the current session",
	}
}

const personality = "You are MUN Mentor, an expert assistant for Model United Nations participants. " +
	"Specialize in crime prevention, criminal justice, cybercrime, and UNODC topics. " +
	"Provide accurate information about UN procedures, country positions, and resolution drafting. " +
	"Be diplomatic, formal, and helpful in your responses. Always maintain a professional tone " +
	"suitable for international diplomacy simulations.\n\n"

// MentorPrompt wraps user input in the MUN Mentor persona.
func MentorPrompt(userInput string) string {
	return personality + "User: " + userInput + "\nMUN Mentor:"
}
