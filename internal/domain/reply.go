package domain

// WhatsApp interactive messages carry at most three buttons and cap
// button titles at 20 characters; the constructors below clamp rather
// than error so the dialog layer can stay declarative.
const (
	MaxReplyOptions   = 3
	MaxOptionLabelLen = 20
)

type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaDocument MediaKind = "document"
)

// Media is a single attachment reference carried alongside a reply.
type Media struct {
	Kind     MediaKind
	URL      string
	Caption  string
	Filename string
}

// Reply is the structured outbound message a dialog turn produces. The
// transport decides how many channel calls it becomes.
type Reply struct {
	Text    string
	Options []string
	Media   *Media
}

// NewReply builds a plain text reply.
func NewReply(text string) Reply {
	return Reply{Text: text}
}

// WithOptions attaches quick-reply buttons, dropping extras beyond the
// channel limit and truncating over-long labels.
func (r Reply) WithOptions(labels ...string) Reply {
	if len(labels) > MaxReplyOptions {
		labels = labels[:MaxReplyOptions]
	}
	opts := make([]string, 0, len(labels))
	for _, l := range labels {
		opts = append(opts, truncateLabel(l))
	}
	r.Options = opts
	return r
}

// WithImage attaches a single image reference.
func (r Reply) WithImage(url, caption string) Reply {
	if url == "" {
		return r
	}
	r.Media = &Media{Kind: MediaImage, URL: url, Caption: caption}
	return r
}

func truncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxOptionLabelLen {
		return s
	}
	return string(runes[:MaxOptionLabelLen])
}
