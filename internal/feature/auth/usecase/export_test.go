package usecase

// SetBcryptCost lowers the hashing cost for tests and returns a restore func.
func SetBcryptCost(cost int) func() {
	prev := bcryptCost
	bcryptCost = cost
	return func() { bcryptCost = prev }
}
