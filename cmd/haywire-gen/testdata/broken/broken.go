package broken

type Clock struct{}

// @binding scope=forever
func NewClock() *Clock {
	return &Clock{}
}

// @binding
func NewOtherClock(
	clock *Clock, // @inject supplier=sync
) *Clock {
	return clock
}

// @binding
func NewNothing() {}
