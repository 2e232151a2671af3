package structs

import "io"

// TicketTimeLimit is one of the eight usage-limit entries carried by a Ticket.
type TicketTimeLimit struct {
	EnableTimeLimit uint32 // 0=disabled, 1=time in minutes, 3=disabled, 4=launch count limit
	TimeLimit       uint32
}

func ReadTicketTimeLimit(r io.Reader) (*TicketTimeLimit, error) {
	enable, err := readU32(r)
	if err != nil {
		return nil, err
	}
	limit, err := readU32(r)
	if err != nil {
		return nil, err
	}
	return &TicketTimeLimit{EnableTimeLimit: enable, TimeLimit: limit}, nil
}

func (t *TicketTimeLimit) Write(w io.Writer) error {
	if err := writeU32(w, t.EnableTimeLimit); err != nil {
		return err
	}
	return writeU32(w, t.TimeLimit)
}
