package variant

// Delivery controls how the training context reaches the remote model.
type Delivery string

const (
	// DeliveryInline pastes the examples into the priming message.
	DeliveryInline Delivery = "inline"
	// DeliveryUpload attaches the training file by reference where the provider supports it.
	DeliveryUpload Delivery = "upload"
)

// Variant is one deployment profile of the chat page and its priming prompt.
type Variant struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Instruction       string   `json:"instruction"`
	SystemInstruction string   `json:"systemInstruction,omitempty"`
	Placeholder       string   `json:"placeholder"`
	Embed             bool     `json:"embed"`
	Delivery          Delivery `json:"delivery"`
}

const styleInstruction = "Please respond in this style for our conversation."

// Seed returns the built-in variants.
func Seed() []Variant {
	return []Variant{
		{
			ID:          "classic",
			Title:       "AI Chat",
			Instruction: styleInstruction,
			Placeholder: "Type your message...",
			Delivery:    DeliveryInline,
		},
		{
			ID:    "persona",
			Title: "AI Chat",
			Instruction: "Please respond in this style for our conversation. " +
				"Keep replies short and casual, the way the examples are written.",
			SystemInstruction: "You are a friendly conversational partner. Mirror the tone, vocabulary " +
				"and message length of the example messages you are shown. Never mention that you were given examples.",
			Placeholder: "Say something...",
			Delivery:    DeliveryInline,
		},
		{
			ID:          "embed",
			Title:       "Chat with us",
			Instruction: styleInstruction,
			Placeholder: "Type your message...",
			Embed:       true,
			Delivery:    DeliveryInline,
		},
		{
			ID:          "upload",
			Title:       "AI Chat",
			Instruction: styleInstruction,
			Placeholder: "Type your message...",
			Delivery:    DeliveryUpload,
		},
	}
}
