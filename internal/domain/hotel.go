package domain

// ChannelLink is a lazily resolved identifier/URL pair for one channel.
// Populated the first time an adapter locates the hotel on that channel.
type ChannelLink struct {
	Ref *string // channel-native identifier (place id, location id, ...)
	URL *string
}

func (l ChannelLink) Empty() bool { return l.Ref == nil && l.URL == nil }

type Hotel struct {
	ID    int64
	Name  string // may be overwritten by the Google-resolved authoritative name
	City  *string
	Links map[Channel]ChannelLink
}

func (h Hotel) Link(c Channel) ChannelLink {
	if h.Links == nil {
		return ChannelLink{}
	}
	return h.Links[c]
}
