package entity

// StartupPolicy is the configured behavior for populating windows and tabs at
// application launch. Values are persisted verbatim in the config file.
type StartupPolicy string

const (
	// StartupOpenNewTab starts fresh with a single blank tab.
	StartupOpenNewTab StartupPolicy = "OpenNewTab"
	// StartupRestoreOpenTabs reopens the tabs that were open on last exit.
	StartupRestoreOpenTabs StartupPolicy = "RestoreOpenTabs"
	// StartupRestoreAndOpenNewTab restores and appends a selected blank tab.
	StartupRestoreAndOpenNewTab StartupPolicy = "RestoreAndOpenNewTab"
)

// Valid reports whether p is a known startup policy.
func (p StartupPolicy) Valid() bool {
	switch p {
	case StartupOpenNewTab, StartupRestoreOpenTabs, StartupRestoreAndOpenNewTab:
		return true
	}
	return false
}

// Restores reports whether the policy restores persisted tabs. Session state
// is only discarded on exit when the policy does not restore.
func (p StartupPolicy) Restores() bool {
	return p == StartupRestoreOpenTabs || p == StartupRestoreAndOpenNewTab
}
