package dht

import "fmt"

// FrameBits is the number of data bits per transmission.
const FrameBits = 40

// Frame is a raw transmission: humidity integer/fraction, temperature
// integer/fraction, checksum.
type Frame [5]byte

// Checksum returns the low 8 bits of the sum of the four data bytes.
func (f Frame) Checksum() byte {
	return f[0] + f[1] + f[2] + f[3]
}

// Valid reports whether the transmitted checksum matches.
func (f Frame) Valid() bool {
	return f.Checksum() == f[4]
}

// setBit stores bit i (0 = first transmitted) MSB first.
func (f *Frame) setBit(i int) {
	f[i/8] |= 0x80 >> (i % 8)
}

// Decode validates f and converts it to a Reading for model m.
func Decode(f Frame, m Model) (Reading, error) {
	if !f.Valid() {
		return Reading{}, &ProtocolError{
			Kind:   ChecksumMismatch,
			Phase:  PhaseValidating,
			Bit:    -1,
			Detail: fmt.Sprintf("got 0x%02x, want 0x%02x", f[4], f.Checksum()),
		}
	}

	var (
		r      Reading
		detail string
	)
	switch m {
	case DHT11:
		r, detail = decodeDHT11(f)
	case DHT22:
		r, detail = decodeDHT22(f)
	default:
		detail = "unknown model " + m.String()
	}
	if detail != "" {
		return Reading{}, &ProtocolError{Kind: MalformedFrame, Phase: PhaseValidating, Bit: -1, Detail: detail}
	}
	return r, nil
}

// decodeDHT11 reads integer and tenths bytes. Bit 7 of the temperature
// fraction is the sign on newer DHT11 revisions.
func decodeDHT11(f Frame) (Reading, string) {
	if f == (Frame{}) {
		return Reading{}, "all-zero frame"
	}
	tfrac := f[3] & 0x7f
	if f[1] > 9 || tfrac > 9 {
		return Reading{}, fmt.Sprintf("fraction out of range (humidity .%d, temperature .%d)", f[1], tfrac)
	}
	r := Reading{
		Humidity:    float64(f[0]) + float64(f[1])/10,
		Temperature: float64(f[2]) + float64(tfrac)/10,
	}
	if f[3]&0x80 != 0 {
		r.Temperature = -r.Temperature
	}
	if r.Humidity > 100 {
		return Reading{}, fmt.Sprintf("humidity %.1f%% above 100", r.Humidity)
	}
	return r, ""
}

// decodeDHT22 reads 16-bit tenths with a sign bit on temperature.
func decodeDHT22(f Frame) (Reading, string) {
	h := uint16(f[0])<<8 | uint16(f[1])
	t := uint16(f[2]&0x7f)<<8 | uint16(f[3])
	r := Reading{
		Humidity:    float64(h) / 10,
		Temperature: float64(t) / 10,
	}
	if f[2]&0x80 != 0 {
		r.Temperature = -r.Temperature
	}
	if r.Humidity > 100 {
		return Reading{}, fmt.Sprintf("humidity %.1f%% above 100", r.Humidity)
	}
	if r.Temperature < -40 || r.Temperature > 80 {
		return Reading{}, fmt.Sprintf("temperature %.1f°C outside -40..80", r.Temperature)
	}
	return r, ""
}

// NewFrame builds a frame from four data bytes with a correct checksum.
func NewFrame(b0, b1, b2, b3 byte) Frame {
	f := Frame{b0, b1, b2, b3}
	f[4] = f.Checksum()
	return f
}
