package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateConversationInput(t *testing.T) {
	valid := ConversationInput{
		Email:     "a@b.com",
		Message:   "Hi",
		ChannelID: "chan-1",
	}
	assert.Empty(t, ValidateConversationInput(valid))

	missingMessage := valid
	missingMessage.Message = "   "
	errs := ValidateConversationInput(missingMessage)
	assert.Len(t, errs, 1)
	assert.Equal(t, "message", errs[0].Field)

	missingChannel := valid
	missingChannel.ChannelID = ""
	errs = ValidateConversationInput(missingChannel)
	assert.Len(t, errs, 1)
	assert.Equal(t, "channelId", errs[0].Field)

	badEmail := valid
	badEmail.Email = "not-an-email"
	errs = ValidateConversationInput(badEmail)
	assert.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Field)

	// Email is optional when a leadId carries the identity.
	noEmail := valid
	noEmail.Email = ""
	noEmail.LeadID = "0b39cc25-9189-4d4e-8e6b-8f0f4b2f2f35"
	assert.Empty(t, ValidateConversationInput(noEmail))
}
