package taskname

const (
	// Reminder tasks
	RenewalReminderRun = "reminders:renewal:run"
)
