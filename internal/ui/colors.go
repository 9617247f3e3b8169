package ui

// Color accessors read the active theme so that presentation code never
// holds on to escape codes across a theme change.

func ColorRed() string       { return GetCurrentTheme().Error }
func ColorGreen() string     { return GetCurrentTheme().Success }
func ColorYellow() string    { return GetCurrentTheme().Secondary }
func ColorBlue() string      { return GetCurrentTheme().Primary }
func ColorCyan() string      { return GetCurrentTheme().Info }
func ColorOrange() string    { return GetCurrentTheme().Warning }
func ColorBold() string      { return GetCurrentTheme().Bold }
func ColorUnderline() string { return GetCurrentTheme().Under }
func ColorReset() string     { return GetCurrentTheme().Reset }
