package selection

// Option applies a configuration option to the Picker.
type Option func(*Picker)

// WithBands overrides the strong band of the given tiers.
func WithBands(b Bands) Option {
	return func(p *Picker) {
		for tier, band := range b {
			if band.Den > 0 && band.Num >= 0 && band.Num <= band.Den {
				p.bands[tier] = band
			}
		}
	}
}
