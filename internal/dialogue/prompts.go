package dialogue

// prompts.go collects the user-facing utterances so they can be tuned
// without touching the transition logic.

const (
	// PromptDescribeSymptoms is returned while no symptoms have been
	// recognized yet.
	PromptDescribeSymptoms = "Could you describe your symptoms in more detail?"

	// PromptEmergency short-circuits every other outcome.
	PromptEmergency = "EMERGENCY: Please seek immediate medical attention!"

	// PromptNoMatch is the referral issued when no disease matches the
	// confirmed symptoms.
	PromptNoMatch = "I couldn't identify any matching diseases. Please consult a doctor."

	// PromptTryAgain is the graceful fallback for internal failures; the
	// engine never returns empty fulfillment text.
	PromptTryAgain = "Sorry, I encountered an error. Please try again."

	followupPrefix  = "Do you also have any of these symptoms: "
	diagnosisPrefix = "You might have "
)
