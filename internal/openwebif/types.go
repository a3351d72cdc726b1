package openwebif

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// IntOrStringInt64 handles JSON fields that can be "123" or 123.
type IntOrStringInt64 int64

func (v *IntOrStringInt64) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*v = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer string %q", s)
		}
		*v = IntOrStringInt64(i)
		return nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("invalid json value: %s", string(b))
	}
	if i, err := n.Int64(); err == nil {
		*v = IntOrStringInt64(i)
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("not a number: %s", n.String())
	}
	*v = IntOrStringInt64(int64(f))
	return nil
}

// Service is a receiver channel.
type Service struct {
	Ref  string `json:"servicereference"`
	Name string `json:"servicename"`
}

// bouquetEntry is one element of /api/getallservices.
type bouquetEntry struct {
	Service
	SubServices []Service `json:"subservices"`
}

type servicesResponse struct {
	Services []bouquetEntry `json:"services"`
}

// EPGEvent is one guide entry of /api/epgservice.
type EPGEvent struct {
	ID          IntOrStringInt64 `json:"id"`
	Title       string           `json:"title"`
	ShortDesc   string           `json:"shortdesc"`
	LongDesc    string           `json:"longdesc"`
	Begin       IntOrStringInt64 `json:"begin_timestamp"`
	Duration    IntOrStringInt64 `json:"duration_sec"`
	ServiceRef  string           `json:"sref"`
	ServiceName string           `json:"sname"`
	Genre       string           `json:"genre,omitempty"`
}

// EPGResponse is the /api/epgservice payload.
type EPGResponse struct {
	Events []EPGEvent `json:"events"`
}

// Timer states reported by /api/timerlist.
const (
	TimerStateWaiting   = 0
	TimerStatePrepared  = 1
	TimerStateRecording = 2
	TimerStateFinished  = 3
)

// Timer is one entry of /api/timerlist.
type Timer struct {
	ServiceRef  string           `json:"serviceref"`
	ServiceName string           `json:"servicename"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Begin       IntOrStringInt64 `json:"begin"`
	End         IntOrStringInt64 `json:"end"`
	State       IntOrStringInt64 `json:"state"`
	Disabled    IntOrStringInt64 `json:"disabled"`
}

type timerListResponse struct {
	Result bool    `json:"result"`
	Timers []Timer `json:"timers"`
}

// resultResponse is the envelope of mutating endpoints.
type resultResponse struct {
	Result  bool   `json:"result"`
	Message string `json:"message"`
}
