package matching

const (
	// gps noise (meters), newson & krumm
	sigmaZ = 4.07

	// tolerance (meters) of the route-length vs great-circle difference
	beta = 2.0

	// candidate pairs whose route detour exceeds this are unreachable
	maximumTransitionDistance = 2000.0

	transitionWorkers = 30
)
