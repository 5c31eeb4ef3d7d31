package keeper

import "github.com/nlopes/slack"

// Response visibility scopes: private to the caller, or broadcast to the
// channel.
const (
	Ephemeral = "ephemeral"
	InChannel = "in_channel"
)

// Response is the wire shape Slack expects back from a slash command or an
// interactive message.
type Response struct {
	ResponseType string             `json:"response_type"`
	Text         string             `json:"text"`
	Attachments  []slack.Attachment `json:"attachments,omitempty"`
}

// General builds a plain text response with no attachments.
func General(text string, inChannel bool) Response {
	responseType := Ephemeral
	if inChannel {
		responseType = InChannel
	}
	return Response{ResponseType: responseType, Text: text}
}

// Error builds the uniform user-visible failure: a danger-colored
// attachment with an *Error*: prefix, regardless of cause.
func Error(msg string) Response {
	return Response{
		ResponseType: Ephemeral,
		Attachments: []slack.Attachment{{
			Color:      "danger",
			Text:       "*Error*:\n" + msg,
			MarkdownIn: []string{"text"},
		}},
	}
}

// UnknownUser is the guidance shown to callers without a record.
func UnknownUser() Response {
	return Error("I don't know you... try `/goal connect` so we can get acquainted.")
}

// Help builds the /goal usage response. feedback is the UID to direct
// comments and questions to.
func Help(feedback string) Response {
	return Response{
		ResponseType: Ephemeral,
		Attachments: []slack.Attachment{{
			Color: "good",
			Text:  "Use `/goal` to manage your writing goal. For example:",
			Fields: []slack.AttachmentField{
				{Value: "* `/goal` Write something.\n* `/goal`\n* `/goal @user`\n", Short: true},
				{Value: "will set a new goal.\nwill return your current goal.\nwill return @user's goal.\n", Short: true},
				{Value: "Comments or questions: <@" + feedback + ">.", Short: false},
			},
			MarkdownIn: []string{"text", "fields"},
		}},
	}
}

// ConnectPrompt builds the connect response: a button that posts back an
// interactive message.
func ConnectPrompt() Response {
	return Response{
		ResponseType: Ephemeral,
		Text:         "You have goals? Awesome!",
		Attachments: []slack.Attachment{{
			Fallback:   "Click to connect.",
			Color:      "good",
			Text:       "Click the button below to connect with the GoalKeeper...",
			CallbackID: "connect_button",
			Actions: []slack.AttachmentAction{
				{Type: "button", Text: "Connect", Name: "connect", Value: "connect"},
			},
			MarkdownIn: []string{"text"},
		}},
	}
}
