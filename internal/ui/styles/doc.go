// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the miki TUI.

The palette mirrors the Miki web client: a deep navy surface, raised indigo
panels, and violet accents. All colors use Lip Gloss AdaptiveColor so light
terminals get readable equivalents automatically.

Theme bundles every style the panels use; create one per program run:

	theme := styles.NewTheme()
	header := theme.HeaderTitle.Render("Miki")
*/
package styles
