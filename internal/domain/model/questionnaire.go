package model

// Field is one questionnaire entry: the answer key it stores, the translator
// keys for its prompt and its label in the moderation summary, and the
// conversation step during which its answer is expected.
type Field struct {
	Name      string
	PromptKey string
	LabelKey  string
	Step      Step
}

// questionnaire is the fixed traversal order of the intake flow. Rendering of
// collected answers follows this slice, so answer storage can stay an
// unordered map.
var questionnaire = []Field{
	{Name: "mc_nick", PromptKey: "prompt_minecraft_nick", LabelKey: "label_minecraft_nick", Step: StepAwaitingMinecraftNick},
	{Name: "discord_nick", PromptKey: "prompt_discord_nick", LabelKey: "label_discord_nick", Step: StepAwaitingDiscordNick},
	{Name: "source", PromptKey: "prompt_source", LabelKey: "label_source", Step: StepAwaitingSource},
	{Name: "activity", PromptKey: "prompt_activity", LabelKey: "label_activity", Step: StepAwaitingActivity},
}

// Questionnaire returns the ordered field list. The slice is shared; callers
// must not mutate it.
func Questionnaire() []Field {
	return questionnaire
}

// FirstStep is the step entered when the user taps the apply button.
func FirstStep() Step {
	return questionnaire[0].Step
}

// FieldForStep resolves the field whose answer is being awaited at the given
// step. ok is false for StepIdle and unknown steps.
func FieldForStep(step Step) (field Field, last bool, ok bool) {
	for i, f := range questionnaire {
		if f.Step == step {
			return f, i == len(questionnaire)-1, true
		}
	}
	return Field{}, false, false
}

// NextStep returns the step following the given one, or StepIdle after the
// final field.
func NextStep(step Step) Step {
	for i, f := range questionnaire {
		if f.Step == step {
			if i == len(questionnaire)-1 {
				return StepIdle
			}
			return questionnaire[i+1].Step
		}
	}
	return StepIdle
}
