package profile

// DefaultName is used when neither a flag nor the config picks a profile.
const DefaultName = "main"

// Resolve determines the active profile name using precedence:
// 1. flagOverride (--profile flag)
// 2. configured default (config.toml default_profile or GEMCHAT_DEFAULT_PROFILE)
// 3. "main"
func Resolve(flagOverride, configured string) string {
	if flagOverride != "" {
		return flagOverride
	}
	if configured != "" {
		return configured
	}
	return DefaultName
}
