package common

import "math"

const (
	Rad2Deg = 180 / math.Pi
	Deg2Rad = math.Pi / 180
)

func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// NormalizeAngle wraps degrees into (-180, 180].
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// DeltaAngle returns the shortest signed rotation in degrees from one
// heading to another.
func DeltaAngle(from, to float64) float64 {
	return NormalizeAngle(to - from)
}

// LerpAngle interpolates along the shortest arc. t is clamped to [0, 1],
// which matches a quaternion slerp about a single axis.
func LerpAngle(from, to, t float64) float64 {
	return NormalizeAngle(from + DeltaAngle(from, to)*Clamp01(t))
}
