package entity

type CustomCommand struct {
	Key      string `json:"key" yaml:"key"`
	Phrase   string `json:"phrase" yaml:"phrase"`
	Response string `json:"response" yaml:"response"`
}

type Utterance struct {
	ID     uint64  `json:"id"`
	Text   string  `json:"text"`
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
	Lang   string  `json:"lang"`
	Voice  string  `json:"voice,omitempty"`
}

type Operator struct {
	ID       string
	Username string
}
