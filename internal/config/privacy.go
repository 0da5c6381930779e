package config

import "github.com/dwelltrack/lumen/internal/storage"

// DefaultPrivacyRules returns a curated starter set of privacy rules
// covering password managers, private browsing and screen-lock
// prompts. Installed on demand via `lumen rule init`; never seeded
// automatically, since every rule hides data the user may want.
func DefaultPrivacyRules() []storage.PrivacyRule {
	return []storage.PrivacyRule{
		// Password managers: never record at all.
		{RuleType: storage.RuleIgnore, WMClassPattern: `1password|keepassxc|bitwarden|seahorse`},
		// Private browsing windows: keep the dwell time, drop the title.
		{RuleType: storage.RuleRedact, TitlePattern: `private browsing|incognito|inprivate`},
		// Polkit and keyring prompts expose action descriptions.
		{RuleType: storage.RuleRedact, WMClassPattern: `polkit-gnome-authentication-agent|gcr-prompter`},
	}
}
