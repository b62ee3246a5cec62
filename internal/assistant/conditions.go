package assistant

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Conditions are the inputs of a plan request. Either Area or Residence
// must be set.
type Conditions struct {
	Area           string `validate:"required_without=Residence"`
	Residence      string `validate:"required_without=Area"`
	Transportation string
	Duration       string
	Mood           string
}

func (c Conditions) normalized() Conditions {
	return Conditions{
		Area:           strings.TrimSpace(c.Area),
		Residence:      strings.TrimSpace(c.Residence),
		Transportation: strings.TrimSpace(c.Transportation),
		Duration:       strings.TrimSpace(c.Duration),
		Mood:           strings.TrimSpace(c.Mood),
	}
}

// Validate checks that a location is known.
func (c Conditions) Validate() error {
	return validate.Struct(c)
}

// RequestMessage renders the plan request. The service recognises plan
// requests by the プラン and 作って keywords, so both must stay in the text.
func (c Conditions) RequestMessage() string {
	area := c.Area
	if area == "" {
		area = c.Residence + "周辺"
	}
	mood := c.Mood
	if mood == "" {
		mood = "おまかせ"
	}
	return fmt.Sprintf(
		"【プラン作成依頼】エリア：%s, 移動手段：%s, 時間：%s。今日の気分/要望：%s。\n"+
			"特に、移動手段が「車」の場合は、各スポットごとに近くの駐車場名と料金目安を必ず含めてプランを作ってください。",
		area, c.Transportation, c.Duration, mood,
	)
}
