package bitrix24

import "time"

// CoreResponse wraps one successful response envelope. It is created once
// per call and never modified afterwards, so it can be handed to any number
// of typed results.
type CoreResponse struct {
	response *Response
	data     *ResponseData
}

// NewCoreResponse validates a success envelope and wraps it. The envelope
// must be a map holding a "result" key; pagination and timing metadata are
// optional but must be well formed when present.
//
// Error envelopes never reach this point: Client.Call turns them into
// *ErrorResponse values first.
func NewCoreResponse(envelope Value, resp *Response) (*CoreResponse, error) {
	data, err := newResponseData(envelope)
	if err != nil {
		return nil, err
	}
	return &CoreResponse{response: resp, data: data}, nil
}

// ResponseData returns the decoded envelope.
func (c *CoreResponse) ResponseData() *ResponseData {
	if c == nil {
		return nil
	}
	return c.data
}

// Response returns the HTTP level response the envelope was read from. It is
// nil for envelopes built outside a Client call.
func (c *CoreResponse) Response() *Response {
	if c == nil {
		return nil
	}
	return c.response
}

// ResponseData exposes the fields of a success envelope.
type ResponseData struct {
	result Value
	total  *int64
	next   *int64
	time   *ResponseTime
}

func newResponseData(envelope Value) (*ResponseData, error) {
	rec, err := envelope.Record()
	if err != nil {
		return nil, annotate(err, "", "envelope")
	}

	result, ok := rec.Get("result")
	if !ok {
		return nil, missingError("result", "envelope")
	}

	data := &ResponseData{result: result}

	if data.total, err = optionalInt(rec, "total"); err != nil {
		return nil, err
	}
	if data.next, err = optionalInt(rec, "next"); err != nil {
		return nil, err
	}
	if raw, ok := rec.Get("time"); ok && !raw.IsNull() {
		t, err := newResponseTime(raw)
		if err != nil {
			return nil, err
		}
		data.time = t
	}

	return data, nil
}

func optionalInt(rec Record, key string) (*int64, error) {
	raw, ok := rec.Get(key)
	if !ok || raw.isBlank() {
		return nil, nil
	}
	n, err := raw.AsInt()
	if err != nil {
		return nil, annotate(err, key, "envelope")
	}
	return &n, nil
}

// Result returns the raw "result" payload.
func (d *ResponseData) Result() Value {
	return d.result
}

// Total returns the total number of records a list method can return, when
// the server reported it.
func (d *ResponseData) Total() (int64, bool) {
	if d.total == nil {
		return 0, false
	}
	return *d.total, true
}

// Next returns the offset of the next page, when there is one.
func (d *ResponseData) Next() (int64, bool) {
	if d.next == nil {
		return 0, false
	}
	return *d.next, true
}

// Time returns the server timing block, or nil if the envelope had none.
func (d *ResponseData) Time() *ResponseTime {
	return d.time
}

// ResponseTime is the timing block the server attaches to every envelope.
// Start, Finish, Duration, Processing and Operating are in seconds.
type ResponseTime struct {
	Start            float64
	Finish           float64
	Duration         float64
	Processing       float64
	Operating        float64
	OperatingResetAt int64
	DateStart        time.Time
	DateFinish       time.Time
}

func newResponseTime(raw Value) (*ResponseTime, error) {
	item, err := NewItem(raw, "time")
	if err != nil {
		return nil, err
	}

	var t ResponseTime
	floats := []struct {
		field string
		dst   *float64
	}{
		{"start", &t.Start},
		{"finish", &t.Finish},
		{"duration", &t.Duration},
		{"processing", &t.Processing},
		{"operating", &t.Operating},
	}
	for _, f := range floats {
		v, err := item.OptionalFloat(f.field)
		if err != nil {
			return nil, err
		}
		if v != nil {
			*f.dst = *v
		}
	}

	resetAt, err := item.OptionalInt("operating_reset_at")
	if err != nil {
		return nil, err
	}
	t.OperatingResetAt = Int64Value(resetAt)

	dateStart, err := item.OptionalTime("date_start")
	if err != nil {
		return nil, err
	}
	t.DateStart = TimeValue(dateStart)

	dateFinish, err := item.OptionalTime("date_finish")
	if err != nil {
		return nil, err
	}
	t.DateFinish = TimeValue(dateFinish)

	return &t, nil
}
