package scan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeQRValid(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Draft
	}{
		{
			name:     "all fields",
			raw:      `{"groupName":"Alpha","members":4,"difficulty":2}`,
			expected: Draft{GroupName: "Alpha", MemberCount: 4, Difficulty: 2},
		},
		{
			name:     "defaults when numeric fields absent",
			raw:      `{"groupName":"Beta"}`,
			expected: Draft{GroupName: "Beta", MemberCount: 1, Difficulty: 1},
		},
		{
			name:     "zero and null take defaults",
			raw:      `{"groupName":"Gamma","members":0,"difficulty":null}`,
			expected: Draft{GroupName: "Gamma", MemberCount: 1, Difficulty: 1},
		},
		{
			name:     "extra fields ignored",
			raw:      `{"groupName":"Delta","members":2,"difficulty":4,"issuedAt":"2024-01-01","tags":["a"]}`,
			expected: Draft{GroupName: "Delta", MemberCount: 2, Difficulty: 4},
		},
		{
			name:     "surrounding whitespace",
			raw:      "  {\"groupName\":\"Eps\",\"members\":3}\n",
			expected: Draft{GroupName: "Eps", MemberCount: 3, Difficulty: 1},
		},
		{
			name:     "integral float",
			raw:      `{"groupName":"Zeta","members":5.0}`,
			expected: Draft{GroupName: "Zeta", MemberCount: 5, Difficulty: 1},
		},
		{
			name:     "unicode group name",
			raw:      `{"groupName":"チームα","difficulty":3}`,
			expected: Draft{GroupName: "チームα", MemberCount: 1, Difficulty: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, err := DecodeQR(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, draft)
		})
	}
}

func TestDecodeQRInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"unterminated", `{"groupName":"Alpha"`},
		{"not json", `hello}`},
		{"array", `[{"groupName":"Alpha"}]`},
		{"missing group name", `{"members":2}`},
		{"empty group name", `{"groupName":"  "}`},
		{"group name wrong type", `{"groupName":42}`},
		{"members wrong type", `{"groupName":"A","members":"4"}`},
		{"fractional members", `{"groupName":"A","members":2.5}`},
		{"negative members", `{"groupName":"A","members":-1}`},
		{"difficulty too high", `{"groupName":"A","difficulty":5}`},
		{"difficulty negative", `{"groupName":"A","difficulty":-2}`},
		{"trailing data", `{"groupName":"A"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, err := DecodeQR(tt.raw)
			require.ErrorIs(t, err, ErrInvalidPayload)
			assert.Equal(t, Draft{}, draft)
		})
	}
}

func TestIsQueueNumberComplete(t *testing.T) {
	tests := []struct {
		buffer   string
		expected bool
	}{
		{"", false},
		{"0", false},
		{"00", false},
		{"007", true},
		{"abc", true},
		{"0071", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsQueueNumberComplete(tt.buffer), "buffer %q", tt.buffer)
	}
}

func TestIsPayloadTerminated(t *testing.T) {
	assert.True(t, IsPayloadTerminated(`{"groupName":"A"}`))
	assert.True(t, IsPayloadTerminated(`}`))
	assert.False(t, IsPayloadTerminated(`{"groupName":"A"`))
	assert.False(t, IsPayloadTerminated(`{"groupName":"A"}`+"\n"))
	assert.False(t, IsPayloadTerminated(""))

	// Every strict prefix of a payload without inner braces is unterminated
	payload := `{"groupName":"Alpha","members":4}`
	for i := 0; i < len(payload)-1; i++ {
		assert.False(t, IsPayloadTerminated(payload[:i]), "prefix %q", payload[:i])
	}
	assert.False(t, strings.HasSuffix(payload[:len(payload)-1], PayloadTerminator))
}
