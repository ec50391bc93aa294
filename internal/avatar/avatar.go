// Package avatar renders deterministic "targeting computer" SVG avatars from
// a user key. The key's hex digits drive every variable feature, so the same
// user always gets the same avatar and no image data is ever stored.
package avatar

import (
	"fmt"
	"strconv"
	"strings"
)

// Theme colors.
const (
	targetingYellow  = "#FAF566"
	rebelOrange      = "#FF7F00"
	xWingRed         = "#D9381E"
	backgroundColor  = "#1C2A3A"
	placeholderColor = "#666666"
)

// Trench geometry.
const (
	viewboxWidth      = 100.0
	viewboxHeight     = 100.0
	vanishingPointX   = viewboxWidth / 2
	vanishingPointY   = viewboxHeight * 0.4
	maxDepthLevels    = 6
	minDepthLevels    = 2
	trenchWidthNear   = viewboxWidth * 0.95
	trenchHeightNear  = viewboxHeight * 0.7
	perspectiveFactor = 0.1
	sideBarWidth      = 5.0
	sideBarZ          = 0.5
	depthStep         = 1.5
)

// minKeyLen is the number of hex digits the renderer consumes.
const minKeyLen = 20

// Render produces an SVG avatar for the given user key at the given pixel
// size. Keys shorter than the renderer needs (or non-hex keys) produce the
// placeholder avatar.
func Render(userKey string, size int) []byte {
	if size <= 0 {
		size = 120
	}

	var sb strings.Builder
	fmt.Fprintf(&sb,
		`<svg width="%d" height="%d" viewBox="0 0 %g %g" xmlns="http://www.w3.org/2000/svg" preserveAspectRatio="xMidYMid meet" style="background-color:%s">`,
		size, size, viewboxWidth, viewboxHeight, backgroundColor)

	valid := len(userKey) >= minKeyLen && isHex(userKey[:minKeyLen])

	// Near trench corners at z=0.
	yFloor := vanishingPointY + trenchHeightNear/2
	yCeil := vanishingPointY - trenchHeightNear/2
	xLeft := vanishingPointX - trenchWidthNear/2
	xRight := vanishingPointX + trenchWidthNear/2

	lineColor := targetingYellow
	if !valid {
		lineColor = placeholderColor
	}

	// Main converging lines from the near corners to the vanishing point.
	for _, corner := range [][2]float64{{xLeft, yCeil}, {xRight, yCeil}, {xLeft, yFloor}, {xRight, yFloor}} {
		x, y := project(corner[0], corner[1], 0)
		fmt.Fprintf(&sb,
			`<line x1="%.2f" y1="%.2f" x2="%g" y2="%g" stroke="%s" stroke-width="0.7"/>`,
			x, y, vanishingPointX, vanishingPointY, lineColor)
	}

	if valid {
		renderDepthGrid(&sb, userKey, xLeft, xRight, yCeil, yFloor)
		renderSideBars(&sb, userKey, xLeft, xRight, yCeil, yFloor)
		renderArrows(&sb, userKey)

		// Central reticle base.
		fmt.Fprintf(&sb,
			`<path d="M %g,%g h6 M %g,%g v6" stroke="%s" stroke-width="0.8" fill="none"/>`,
			vanishingPointX-3, vanishingPointY, vanishingPointX, vanishingPointY-3, targetingYellow)
	} else {
		fmt.Fprintf(&sb,
			`<text x="50" y="70" text-anchor="middle" fill="%s" font-size="10">INVALID KEY</text>`,
			placeholderColor)
	}

	sb.WriteString(`</svg>`)
	return []byte(sb.String())
}

// project applies the linear perspective projection at depth z.
func project(x, y, z float64) (screenX, screenY float64) {
	scale := 1 / (1 + z*perspectiveFactor)
	screenX = vanishingPointX + (x-vanishingPointX)*scale
	screenY = vanishingPointY + (y-vanishingPointY)*scale
	return screenX, screenY
}

// renderDepthGrid draws the hash-selected trench grid lines.
func renderDepthGrid(sb *strings.Builder, key string, xLeft, xRight, yCeil, yFloor float64) {
	levels := minDepthLevels + int(hexVal(key[0:2]))%(maxDepthLevels-minDepthLevels+1)

	for i := range levels {
		z := float64(i+1) * depthStep
		offset := 2 + i*2
		// Some levels drop out based on the key, giving each avatar its own rhythm.
		if i > 0 && hexVal(key[offset:offset+1])%3 == 0 {
			continue
		}

		tlX, tlY := project(xLeft, yCeil, z)
		trX, trY := project(xRight, yCeil, z)
		blX, blY := project(xLeft, yFloor, z)
		brX, brY := project(xRight, yFloor, z)

		// Floor line plus the two wall lines.
		gridLine(sb, blX, blY, brX, brY)
		gridLine(sb, tlX, tlY, blX, blY)
		gridLine(sb, trX, trY, brX, brY)
	}
}

func gridLine(sb *strings.Builder, x1, y1, x2, y2 float64) {
	fmt.Fprintf(sb,
		`<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.4" opacity="0.7"/>`,
		x1, y1, x2, y2, targetingYellow)
}

// renderSideBars draws the optional colored wall bars.
func renderSideBars(sb *strings.Builder, key string, xLeft, xRight, yCeil, yFloor float64) {
	showLeft := hexVal(key[15:16])%2 == 0
	showRight := hexVal(key[16:17])%2 == 0

	var barColor string
	switch hexVal(key[17:18]) % 4 {
	case 0:
		barColor = xWingRed
	case 1:
		barColor = rebelOrange
	default:
		return
	}

	scale := 1 / (1 + sideBarZ*perspectiveFactor)
	barWidth := sideBarWidth * scale

	drawBar := func(x float64) {
		topX, topY := project(x, yCeil, sideBarZ)
		_, bottomY := project(x, yFloor, sideBarZ)
		fmt.Fprintf(sb,
			`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`,
			topX-barWidth/2, topY, barWidth, bottomY-topY, barColor)
	}

	if showLeft {
		drawBar(xLeft)
	}
	if showRight {
		drawBar(xRight)
	}
}

// renderArrows draws the central directional arrows selected by the key.
func renderArrows(sb *strings.Builder, key string) {
	flags := hexVal(key[18:20])

	arrowColor := xWingRed
	if flags&0b10000 != 0 {
		arrowColor = rebelOrange
	}

	const arrowSize = 15.0
	const arrowOffset = 5.0

	paths := []struct {
		bit  uint64
		path string
	}{
		{0b0001, fmt.Sprintf("M %g %g l %g %g h %g z",
			vanishingPointX, vanishingPointY-arrowOffset-arrowSize, -arrowSize/2, arrowSize, arrowSize)},
		{0b0010, fmt.Sprintf("M %g %g l %g %g h %g z",
			vanishingPointX, vanishingPointY+arrowOffset+arrowSize, -arrowSize/2, -arrowSize, arrowSize)},
		{0b0100, fmt.Sprintf("M %g %g l %g %g v %g z",
			vanishingPointX-arrowOffset-arrowSize, vanishingPointY, arrowSize, -arrowSize/2, arrowSize)},
		{0b1000, fmt.Sprintf("M %g %g l %g %g v %g z",
			vanishingPointX+arrowOffset+arrowSize, vanishingPointY, -arrowSize, -arrowSize/2, arrowSize)},
	}

	for _, a := range paths {
		if flags&a.bit != 0 {
			fmt.Fprintf(sb, `<path d="%s" fill="%s"/>`, a.path, arrowColor)
		}
	}
}

// hexVal parses a short hex substring; callers guarantee validity via isHex.
func hexVal(s string) uint64 {
	v, _ := strconv.ParseUint(s, 16, 64)
	return v
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
