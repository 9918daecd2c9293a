package aws

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextEmail(t *testing.T) {
	in := TextEmail("noreply@rent.hu", "anna@example.com", "Foglalás", "Köszönjük!")

	assert.Equal(t, "noreply@rent.hu", aws.ToString(in.Source))
	assert.Equal(t, []string{"anna@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Foglalás", aws.ToString(in.Message.Subject.Data))
	assert.Equal(t, "UTF-8", aws.ToString(in.Message.Body.Text.Charset))
}

func TestTransactionalSMS(t *testing.T) {
	in := TransactionalSMS("+36301234567", "", "Foglalás rögzítve")
	assert.Equal(t, "+36301234567", aws.ToString(in.PhoneNumber))
	assert.Len(t, in.MessageAttributes, 1)

	in = TransactionalSMS("+36301234567", "RentHU", "Foglalás rögzítve")
	require.Contains(t, in.MessageAttributes, "AWS.SNS.SMS.SenderID")
	assert.Equal(t, "RentHU", aws.ToString(in.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
}
