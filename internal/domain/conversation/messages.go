package conversation

import (
	"fmt"
	"strings"
)

// Input limits enforced by the dispatcher.
const (
	TitleMaxLen       = 100
	ContentMaxLen     = 5000
	TagMaxLen         = 20
	ContentPreviewLen = 100
)

// Reply texts. Kept as package constants so tests can assert on them without
// stringly duplication.
const (
	MsgUnsupportedType = "I can only handle text and images. Please send one of those."
	MsgIdleGuidance    = "Hi! Send \"/new\" whenever you want to start writing a post. Send \"/help\" for the full list of commands."
	MsgHelp            = "Commands:\n/new — start a new post\n/cancel — discard the post in progress\n/help — show this message"
	MsgAlreadyWriting  = "You're already writing a post. Send /cancel first if you want to start over."
	MsgNothingToCancel = "There's nothing to cancel right now. Send /new to start a post."
	MsgCancelled       = "Okay, I've discarded that post. Send /new whenever you're ready to start again."

	MsgAskTitle     = "Let's write a post! First, send me the title."
	MsgTitleEmpty   = "The title can't be empty. Please send a title."
	MsgTitleTooLong = "That title is too long (max 100 characters). Please send a shorter one."

	MsgAskContent     = "Great title! Now send me the body of the post."
	MsgContentEmpty   = "The body can't be empty. Please send the post content."
	MsgContentTooLong = "That's too long (max 5000 characters). Please trim it down and resend."

	MsgAskImage         = "Looking good! Now send me a cover image for the post."
	MsgTextDuringImage  = "I need an image for this step. Please send a photo instead of text."
	MsgImageOutsideStep = "I can only accept images while waiting for the cover photo."
	MsgImageSaved       = "Cover image saved!"
	MsgImageFailed      = "Something went wrong processing that image. Please try sending it again."

	MsgTagRetry     = "I couldn't find any tags in that. Pick numbers from the list, or add your own."
	MsgConfirmRetry = "Please answer yes or no: should I publish this post?"
	MsgCompleted    = "Done! Your post has been queued for publishing. Thanks!"

	MsgTryAgainLater = "Something went wrong on my side. Please try again in a moment."
	MsgStartOver     = "Sorry, I lost track of that. Please send /new to start over."
	MsgWriteConflict = "I received two messages at once and couldn't keep up. Please resend the last one."

	MsgWelcome = "Thanks for adding me! Send /new to turn a chat into a blog post."
)

// NewTagPrefix introduces the free-text tag grammar, e.g. "new: golang".
const NewTagPrefix = "new:"

// RenderTagMenu renders the numbered tag catalogue shown to the user.
func RenderTagMenu(catalogue []string) string {
	var b strings.Builder
	b.WriteString("Pick tags by number, separated by commas (e.g. \"1,3\"),\n")
	fmt.Fprintf(&b, "or add your own with \"%s your-tag\":\n", NewTagPrefix)
	for i, tag := range catalogue {
		fmt.Fprintf(&b, "%d. %s\n", i+1, tag)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderConfirmation renders the final review screen: title, a truncated
// content preview, the chosen tags and an image acknowledgment.
func RenderConfirmation(data PostData) string {
	preview := data.Content
	if runes := []rune(preview); len(runes) > ContentPreviewLen {
		preview = string(runes[:ContentPreviewLen]) + "…"
	}
	var b strings.Builder
	b.WriteString("Here's your post:\n\n")
	fmt.Fprintf(&b, "Title: %s\n", data.Title)
	fmt.Fprintf(&b, "Body: %s\n", preview)
	fmt.Fprintf(&b, "Tags: %s\n", strings.Join(data.Tags, ", "))
	b.WriteString("Image: attached ✓\n\n")
	b.WriteString("Publish it? (yes/no)")
	return b.String()
}
