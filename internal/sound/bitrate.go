package sound

// Supported stream bitrates. Values outside this set are accepted and passed
// through to the player, which decides whether it can honor them.
const (
	Bitrate128 = "128k"
	Bitrate192 = "192k"
	Bitrate256 = "256k"
	Bitrate320 = "320k"
)

// DefaultBitrate is applied to new players unless overridden
const DefaultBitrate = Bitrate128

// Bitrates returns the supported bitrates in ascending quality order
func Bitrates() []string {
	return []string{Bitrate128, Bitrate192, Bitrate256, Bitrate320}
}

// IsValidBitrate reports whether b is one of the supported bitrates
func IsValidBitrate(b string) bool {
	switch b {
	case Bitrate128, Bitrate192, Bitrate256, Bitrate320:
		return true
	}
	return false
}
