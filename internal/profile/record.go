// Package profile stores the pet profile and its avatar image.
package profile

import "strings"

// BreedOther is the breed selector value that defers to Record.OtherBreed.
const BreedOther = "other"

// Record is the pet profile. Field names double as the petInfo object sent
// to the assistant service, so the JSON tags are part of the wire contract.
type Record struct {
	DogName           string `json:"dog_name"`
	Breed             string `json:"breed"`
	OtherBreed        string `json:"other_breed,omitempty"`
	Gender            string `json:"gender"`
	Age               string `json:"age"`
	Weight            string `json:"weight"`
	CoatType          string `json:"coat_type"`
	CoatTypeDetail    string `json:"coat_type_detail"`
	CoatColor         string `json:"coat_color"`
	NeuteredSpayed    string `json:"neutered_spayed"`
	Allergies         string `json:"allergies"`
	MedicalHistory    string `json:"medical_history"`
	Others            string `json:"others"`
	Personality       string `json:"personality"`
	BarkingTendency   string `json:"barking_tendency"`
	BitingHabit       string `json:"biting_habit"`
	WalkFrequencyTime string `json:"walk_frequency_time"`
	ExerciseLevel     string `json:"exercise_level"`
	LikesWaterPlay    string `json:"likes_water_play"`
	CarSickness       string `json:"car_sickness"`
	CanStayAlone      string `json:"can_stay_alone"`
	TrainingStatus    string `json:"training_status"`
	OwnerResidence    string `json:"owner_residence"`
	DogInteraction    string `json:"dog_interaction"`
	HumanInteraction  string `json:"human_interaction"`
}

// EffectiveBreed applies the "other" override: the free-text breed wins when
// the selector says other, falling back to the sentinel when it is blank.
func (r Record) EffectiveBreed() string {
	if r.Breed != BreedOther {
		return r.Breed
	}
	if strings.TrimSpace(r.OtherBreed) != "" {
		return r.OtherBreed
	}
	return BreedOther
}

// Field is one labelled profile value.
type Field struct {
	Key   string
	Label string
	Value string
}

// Fields returns every profile field in display order, including empty ones.
// Breed is reported as the effective breed.
func (r Record) Fields() []Field {
	return []Field{
		{"dog_name", "Name", r.DogName},
		{"breed", "Breed", r.EffectiveBreed()},
		{"gender", "Gender", r.Gender},
		{"age", "Age", r.Age},
		{"weight", "Weight", r.Weight},
		{"coat_type", "Coat type", r.CoatType},
		{"coat_type_detail", "Coat detail", r.CoatTypeDetail},
		{"coat_color", "Coat color", r.CoatColor},
		{"neutered_spayed", "Neutered/spayed", r.NeuteredSpayed},
		{"allergies", "Allergies", r.Allergies},
		{"medical_history", "Medical history", r.MedicalHistory},
		{"others", "Other notes", r.Others},
		{"personality", "Personality", r.Personality},
		{"barking_tendency", "Barking", r.BarkingTendency},
		{"biting_habit", "Biting", r.BitingHabit},
		{"walk_frequency_time", "Walks", r.WalkFrequencyTime},
		{"exercise_level", "Exercise level", r.ExerciseLevel},
		{"likes_water_play", "Water play", r.LikesWaterPlay},
		{"car_sickness", "Car sickness", r.CarSickness},
		{"can_stay_alone", "Can stay alone", r.CanStayAlone},
		{"training_status", "Training", r.TrainingStatus},
		{"owner_residence", "Owner residence", r.OwnerResidence},
		{"dog_interaction", "With other dogs", r.DogInteraction},
		{"human_interaction", "With people", r.HumanInteraction},
	}
}

// Populated returns only the fields that have a value.
func (r Record) Populated() []Field {
	all := r.Fields()
	out := all[:0]
	for _, f := range all {
		if f.Value != "" {
			out = append(out, f)
		}
	}
	return out
}

// Set assigns value to the field with the given JSON key. It reports false
// for unknown keys.
func (r *Record) Set(key, value string) bool {
	if key == "other_breed" {
		r.OtherBreed = value
		return true
	}
	ptr, ok := r.fieldPointers()[key]
	if !ok {
		return false
	}
	*ptr = value
	return true
}

func (r *Record) fieldPointers() map[string]*string {
	return map[string]*string{
		"dog_name":            &r.DogName,
		"breed":               &r.Breed,
		"gender":              &r.Gender,
		"age":                 &r.Age,
		"weight":              &r.Weight,
		"coat_type":           &r.CoatType,
		"coat_type_detail":    &r.CoatTypeDetail,
		"coat_color":          &r.CoatColor,
		"neutered_spayed":     &r.NeuteredSpayed,
		"allergies":           &r.Allergies,
		"medical_history":     &r.MedicalHistory,
		"others":              &r.Others,
		"personality":         &r.Personality,
		"barking_tendency":    &r.BarkingTendency,
		"biting_habit":        &r.BitingHabit,
		"walk_frequency_time": &r.WalkFrequencyTime,
		"exercise_level":      &r.ExerciseLevel,
		"likes_water_play":    &r.LikesWaterPlay,
		"car_sickness":        &r.CarSickness,
		"can_stay_alone":      &r.CanStayAlone,
		"training_status":     &r.TrainingStatus,
		"owner_residence":     &r.OwnerResidence,
		"dog_interaction":     &r.DogInteraction,
		"human_interaction":   &r.HumanInteraction,
	}
}
