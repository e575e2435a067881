package renewal

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/agency-core/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		email      string
		attachment string
		parsed     bool
	}{
		{
			name:       "json object",
			input:      `{"email": "Dear Jane", "attachment": "# Comparison"}`,
			email:      "Dear Jane",
			attachment: "# Comparison",
			parsed:     true,
		},
		{
			name:       "json without braces",
			input:      "\n  \"email\": \"Dear Jane\", \"attachment\": \"# Table\"  ",
			email:      "Dear Jane",
			attachment: "# Table",
			parsed:     true,
		},
		{
			name:       "plain markers",
			input:      "email: Hi there attachment: Summary",
			email:      "Hi there",
			attachment: "Summary",
			parsed:     true,
		},
		{
			name:       "quoted marker values",
			input:      "Here you go.\nemail: \"Hello\"\nattachment: \"| a | b |\"",
			email:      "Hello",
			attachment: "| a | b |",
			parsed:     true,
		},
		{
			name:   "email only",
			input:  "email:\nJust the email body",
			email:  "Just the email body",
			parsed: true,
		},
		{
			name:   "no markers",
			input:  "I could not compare these documents.",
			parsed: false,
		},
		{
			name:   "json null is not an object",
			input:  "null",
			parsed: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.input)
			assert.Equal(t, tc.parsed, got.Parsed())
			if tc.parsed {
				assert.Equal(t, tc.email, got.Email)
				assert.Equal(t, tc.attachment, got.Attachment)
			} else {
				assert.Equal(t, tc.input, got.Raw)
				assert.NotEmpty(t, got.ParsingError)
			}
		})
	}
}

func TestParse_NeverPanics(t *testing.T) {
	inputs := []string{"", "email", "attachment", "email:", `"email"`, "{", "emailattachment: x", strings.Repeat("email: ", 50)}
	for _, in := range inputs {
		assert.NotPanics(t, func() { Parse(in) }, in)
	}
}

func TestComparison_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(Comparison{Email: "e", Attachment: "a"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"e","attachment":"a"}`, string(raw))

	raw, err = json.Marshal(Parse("nothing useful"))
	require.NoError(t, err)
	var m map[string]string
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "nothing useful", m["comparison"])
	assert.NotEmpty(t, m["parsing_error"])
}

func TestResolveContext(t *testing.T) {
	agency := &model.Agency{Name: "Brooks Waterburn Corp"}
	business := &model.Business{
		Name:     "Laundry Genius",
		Customer: &model.Customer{FirstName: "Jane", LastName: "Doe", Agency: agency},
	}
	first := model.AgencyUser{User: &model.User{FirstName: "First", LastName: "Agent"}}
	primary := model.AgencyUser{IsPrimary: true, User: &model.User{FirstName: "Pat", LastName: "Primary"}}

	c := ResolveContext(business, []model.AgencyUser{first, primary})
	assert.Equal(t, Context{
		BusinessName: "Laundry Genius",
		ClientName:   "Jane Doe",
		AgencyName:   "Brooks Waterburn Corp",
		AgentName:    "Pat Primary",
	}, c)

	c = ResolveContext(business, []model.AgencyUser{first})
	assert.Equal(t, "First Agent", c.AgentName)

	c = ResolveContext(business, nil)
	assert.Equal(t, "", c.AgentName)
	assert.Equal(t, "Brooks Waterburn Corp", c.AgencyName)
}

func TestResolveContext_MissingHops(t *testing.T) {
	assert.Equal(t, Context{}, ResolveContext(nil, nil))

	c := ResolveContext(&model.Business{Name: "Solo"}, nil)
	assert.Equal(t, Context{BusinessName: "Solo"}, c)

	c = ResolveContext(&model.Business{Name: "Solo", Customer: &model.Customer{FirstName: "Jane"}}, nil)
	assert.Equal(t, Context{BusinessName: "Solo", ClientName: "Jane"}, c)
}

func TestPrompts(t *testing.T) {
	system, err := SystemPrompt(Context{BusinessName: "Laundry Genius", ClientName: "Jane Doe", AgencyName: "Brooks", AgentName: "Pat"})
	require.NoError(t, err)
	assert.Contains(t, system, "Client Name: Jane Doe")
	assert.Contains(t, system, "Business Name: Laundry Genius")
	assert.Contains(t, system, `"email"`)

	user, err := UserPrompt([]Document{{Name: "current.pdf", Content: "premium 3,812"}, {Name: "renewal.txt", Content: "premium 4,668"}})
	require.NoError(t, err)
	assert.Contains(t, user, "Document 1: current.pdf\npremium 3,812")
	assert.Contains(t, user, "Document 2: renewal.txt\npremium 4,668")
}
