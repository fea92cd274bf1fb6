package webhook

// Payload is the envelope Facebook POSTs for page subscriptions.
type Payload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one page-level notification batch.
type Entry struct {
	ID      string   `json:"id"`
	Time    int64    `json:"time"`
	Changes []Change `json:"changes"`
}

// Change is a single field change; only field == "leadgen" is processed.
type Change struct {
	Field string       `json:"field"`
	Value LeadgenValue `json:"value"`
}

// LeadgenValue identifies the submitted lead and the ad that captured it.
type LeadgenValue struct {
	LeadgenID string `json:"leadgen_id"`
	AdID      string `json:"ad_id"`
	FormID    string `json:"form_id"`
	PageID    string `json:"page_id"`
}
