package svg

import "fmt"

// Point is a 2D coordinate.
type Point struct {
	X, Y float64
}

// Translate returns a transform attribute value moving to p.
func Translate(p Point) string {
	return fmt.Sprintf("translate(%s,%s)", Num(p.X), Num(p.Y))
}

// Diagonal returns a horizontal cubic Bézier path from source to target
// whose control points sit halfway along the x axis.
func Diagonal(source, target Point) string {
	midX := (source.X + target.X) / 2

	return fmt.Sprintf("M%s,%sC%s,%s %s,%s %s,%s",
		Num(source.X), Num(source.Y),
		Num(midX), Num(source.Y),
		Num(midX), Num(target.Y),
		Num(target.X), Num(target.Y),
	)
}
