package model

// Step identifies where a user currently is in the intake conversation.
type Step string

const (
	// StepIdle is the explicit "no conversation in progress" state. A missing
	// record decodes to this step so every dispatch path can switch on it.
	StepIdle Step = "idle"

	StepAwaitingMinecraftNick Step = "awaiting_minecraft_nick"
	StepAwaitingDiscordNick   Step = "awaiting_discord_nick"
	StepAwaitingSource        Step = "awaiting_source"
	StepAwaitingActivity      Step = "awaiting_activity"
)
