package editor

// escState tracks progress through an ESC-prefixed key sequence.
type escState int

const (
	escNone  escState = iota
	escStart          // ESC
	escCSI            // ESC [ params...
	escSS3            // ESC O
)

// action is what a completed escape sequence asks the editor to do.
type action int

const (
	actNone action = iota
	actLeft
	actRight
	actHome
	actEnd
	actDelete
)

const maxParams = 16

// escapeParser consumes the bytes following ESC. Sequences it doesn't know
// are read up to their final byte and dropped.
type escapeParser struct {
	state  escState
	params []byte
}

func (p *escapeParser) active() bool {
	return p.state != escNone
}

func (p *escapeParser) start() {
	p.state = escStart
	p.params = p.params[:0]
}

// feed advances the parser by one byte. done is true once the sequence is
// complete or abandoned, at which point act says what to do. passthrough
// reports that b was not part of the sequence and should be handled as
// ordinary input.
func (p *escapeParser) feed(b byte) (act action, done, passthrough bool) {
	if isControl(b) {
		p.state = escNone
		return actNone, true, true
	}

	switch p.state {
	case escStart:
		switch b {
		case '[':
			p.state = escCSI
			return actNone, false, false
		case 'O':
			p.state = escSS3
			return actNone, false, false
		}
		p.state = escNone
		return actNone, true, false

	case escSS3:
		p.state = escNone
		return ss3Action(b), true, false

	case escCSI:
		if b >= 0x40 && b <= 0x7E {
			p.state = escNone
			return csiAction(string(p.params), b), true, false
		}
		if len(p.params) < maxParams {
			p.params = append(p.params, b)
		}
		return actNone, false, false

	case escNone:
	}

	return actNone, true, true
}

func isControl(b byte) bool {
	return b < 0x20 || b == 0x7F
}

func csiAction(params string, final byte) action {
	if params == "" || params == "1" {
		switch final {
		case 'D':
			return actLeft
		case 'C':
			return actRight
		case 'H':
			return actHome
		case 'F':
			return actEnd
		}
	}

	if final == '~' {
		switch params {
		case "3":
			return actDelete
		case "1", "7":
			return actHome
		case "4", "8":
			return actEnd
		}
	}

	return actNone
}

func ss3Action(b byte) action {
	switch b {
	case 'D':
		return actLeft
	case 'C':
		return actRight
	case 'H':
		return actHome
	case 'F':
		return actEnd
	}
	return actNone
}
