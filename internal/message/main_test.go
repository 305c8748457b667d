package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseMessengerType(t *testing.T) {
	testCases := []struct {
		input    string
		expected MessengerType
		wantErr  string
	}{
		{input: "SENDGRID_EMAIL", expected: MessengerTypeSendGridEmail},
		{input: "aws_email", expected: MessengerTypeAWSEmail},
		{input: "Dry_Run", expected: MessengerTypeDryRun},
		{input: "PIGEON", wantErr: `invalid message sender type "PIGEON"`},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			mType, err := ParseMessengerType(tc.input)
			if tc.wantErr != "" {
				assert.EqualError(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, mType)
			}
		})
	}
}

func Test_GetClient(t *testing.T) {
	t.Run("dry run client", func(t *testing.T) {
		client, err := GetClient(MessengerOptions{MessengerType: MessengerTypeDryRun})
		require.NoError(t, err)
		assert.Equal(t, MessengerTypeDryRun, client.MessengerType())
	})

	t.Run("sendgrid requires an api key", func(t *testing.T) {
		_, err := GetClient(MessengerOptions{MessengerType: MessengerTypeSendGridEmail})
		assert.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := GetClient(MessengerOptions{MessengerType: "PIGEON"})
		assert.EqualError(t, err, `unknown message sender type: "PIGEON"`)
	})
}
