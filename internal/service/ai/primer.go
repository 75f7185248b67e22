package ai

import (
	"fmt"

	"github.com/zhouzirui/stylechat/internal/model/variant"
	"github.com/zhouzirui/stylechat/internal/service/training"
)

// InlinePrimer builds the priming turn with the examples pasted into it.
func InlinePrimer(v variant.Variant, tc training.Context) string {
	return fmt.Sprintf("Here are examples of my communication style:\n%s\n%s", tc.Text, v.Instruction)
}

// AttachedPrimer builds the priming turn for a training file sent by reference.
func AttachedPrimer(v variant.Variant) string {
	return fmt.Sprintf("Here are examples of my communication style in the attached file.\n%s", v.Instruction)
}
