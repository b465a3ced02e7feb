package parameter

// Starfield (ambient) defaults
const (
	// StarCount is the number of stars regenerated on every resize
	StarCount = 150

	// StarRadiusMin/Max bound star radius in logical pixels
	StarRadiusMin = 0.3
	StarRadiusMax = 1.5

	// StarAlphaMin/Max bound base opacity
	StarAlphaMin = 0.5
	StarAlphaMax = 1.0

	// StarSpeedMin/Max bound drift speed in logical pixels per frame
	StarSpeedMin = 0.05
	StarSpeedMax = 0.15

	// StarColor is the fill color, alpha comes from the star
	StarColor = "#808080"
)
