package world

import (
	"fmt"
	"math/rand"
)

// Obstacle is an axis-aligned blocking rectangle. Every obstacle blocks both
// movement and line of sight.
type Obstacle struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether the point lies inside the obstacle, with optional
// padding around the rectangle.
func (o Obstacle) Contains(p Vec2, padding float64) bool {
	return p.X >= o.X-padding && p.X <= o.X+o.Width+padding &&
		p.Y >= o.Y-padding && p.Y <= o.Y+o.Height+padding
}

// ObstaclesOverlap checks for AABB overlap with optional padding.
func ObstaclesOverlap(a, b Obstacle, padding float64) bool {
	return a.X-padding < b.X+b.Width+padding &&
		a.X+a.Width+padding > b.X-padding &&
		a.Y-padding < b.Y+b.Height+padding &&
		a.Y+a.Height+padding > b.Y-padding
}

const (
	obstacleMinSize     = 2.0
	obstacleMaxSize     = 8.0
	obstacleSpawnMargin = 4.0
	obstaclePadding     = 1.0
)

// GenerateObstacles scatters non-overlapping blocking rectangles across the
// map, keeping a clear zone around the listed spawn points.
func GenerateObstacles(rng *rand.Rand, width, height float64, count int, clear []Vec2, clearRadius float64) []Obstacle {
	if rng == nil || count <= 0 {
		return nil
	}

	obstacles := make([]Obstacle, 0, count)
	attempts := 0
	maxAttempts := count * 20

	for len(obstacles) < count && attempts < maxAttempts {
		attempts++

		w := obstacleMinSize + rng.Float64()*(obstacleMaxSize-obstacleMinSize)
		h := obstacleMinSize + rng.Float64()*(obstacleMaxSize-obstacleMinSize)
		maxX := width - obstacleSpawnMargin - w
		maxY := height - obstacleSpawnMargin - h
		if maxX <= obstacleSpawnMargin || maxY <= obstacleSpawnMargin {
			break
		}

		candidate := Obstacle{
			ID:     fmt.Sprintf("obstacle-%d", len(obstacles)+1),
			X:      obstacleSpawnMargin + rng.Float64()*(maxX-obstacleSpawnMargin),
			Y:      obstacleSpawnMargin + rng.Float64()*(maxY-obstacleSpawnMargin),
			Width:  w,
			Height: h,
		}

		blocked := false
		for _, p := range clear {
			if candidate.Contains(p, clearRadius) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}

		for _, obs := range obstacles {
			if ObstaclesOverlap(candidate, obs, obstaclePadding) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}

		obstacles = append(obstacles, candidate)
	}

	return obstacles
}
