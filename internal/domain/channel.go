package domain

// Channel is one external review platform. The set is closed: adding a
// platform means a new adapter, a new multiplier and a new constant here.
type Channel string

const (
	ChannelGoogle      Channel = "google"
	ChannelTripadvisor Channel = "tripadvisor"
	ChannelExpedia     Channel = "expedia"
	ChannelBooking     Channel = "booking"
	ChannelAirbnb      Channel = "airbnb"
)

// Channels lists every channel in fetch order: Google first (it resolves the
// authoritative hotel name), the rest run in parallel.
var Channels = []Channel{
	ChannelGoogle,
	ChannelTripadvisor,
	ChannelExpedia,
	ChannelBooking,
	ChannelAirbnb,
}

// ParallelChannels are the channels fetched concurrently after the Google phase.
var ParallelChannels = []Channel{
	ChannelTripadvisor,
	ChannelExpedia,
	ChannelBooking,
	ChannelAirbnb,
}

func (c Channel) Valid() bool {
	switch c {
	case ChannelGoogle, ChannelTripadvisor, ChannelExpedia, ChannelBooking, ChannelAirbnb:
		return true
	}
	return false
}

// Multiplier maps the channel's native rating scale onto the common 0-10 scale.
// Booking converts its internal 0-4 score to the public 0-10 value inside the
// adapter, so by the time normalization runs its multiplier is 1.
func (c Channel) Multiplier() float64 {
	switch c {
	case ChannelGoogle, ChannelTripadvisor, ChannelAirbnb:
		return 2
	case ChannelExpedia, ChannelBooking:
		return 1
	}
	return 0
}

// ChannelSet is the capability set of channels with credentials configured.
// Computed once at startup and injected; never re-derived per call.
type ChannelSet map[Channel]bool

func (s ChannelSet) Has(c Channel) bool { return s[c] }

func (s ChannelSet) Empty() bool {
	for _, ok := range s {
		if ok {
			return false
		}
	}
	return true
}
