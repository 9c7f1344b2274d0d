package nn

import (
	"fmt"

	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// Batch normalization hyperparameters.
const (
	BatchNormMomentum = 0.99
	BatchNormEpsilon  = 1e-3
)

// BatchNormalization normalizes x along axis (the feature or channel axis).
//
// Variables, under "<scope>/<name>":
//   - gamma (ones) and beta (zeros), trainable
//   - moving_mean (zeros) and moving_variance (ones), not trainable
//
// In training the batch moments are used and an update op folding them into
// the moving averages (momentum 0.99) is queued on the update_ops
// collection. The moving averages stay unchanged until Graph.RunUpdateOps;
// inference reads them, so it is only correct once the updates have run.
func BatchNormalization(s *Scope, x *tensor.Tensor, name string, axis int, training bool) (*tensor.Tensor, error) {
	sc := s.Sub(name)
	a := x.Shape().Axis(axis)
	if a < 0 {
		return nil, fmt.Errorf("batch normalization %s: %w: axis %d for %v", sc.Prefix(), ErrRank, axis, x.Shape())
	}
	C := x.Shape()[a]
	shape := tensor.Shape{C}

	gamma, err := sc.Variable("gamma", shape, OnesInitializer(), 0)
	if err != nil {
		return nil, err
	}
	beta, err := sc.Variable("beta", shape, ZerosInitializer(), 0)
	if err != nil {
		return nil, err
	}
	movingMean, err := sc.NonTrainable("moving_mean", shape, ZerosInitializer())
	if err != nil {
		return nil, err
	}
	movingVar, err := sc.NonTrainable("moving_variance", shape, OnesInitializer())
	if err != nil {
		return nil, err
	}

	b := s.g.backend
	if !training {
		out := b.Normalize(x, movingMean.Value(), movingVar.Value(), gamma.Value(), beta.Value(), a, BatchNormEpsilon)
		return s.g.record(sc.Name("FusedBatchNorm"), "BatchNorm", out), nil
	}

	mean, variance := b.Moments(x, a)
	out := b.Normalize(x, mean, variance, gamma.Value(), beta.Value(), a, BatchNormEpsilon)

	// The moving variance tracks the unbiased estimate n/(n-1).
	unbiased := variance
	if n := x.NumElements() / C; n > 1 {
		unbiased = b.Scale(variance, float32(n)/float32(n-1))
	}

	s.g.AddToCollection(UpdateOpsCollection, &UpdateOp{
		Name: sc.Name("AssignMovingAvg"),
		apply: func() {
			assignMovingAverage(movingMean.Value(), mean, BatchNormMomentum)
			assignMovingAverage(movingVar.Value(), unbiased, BatchNormMomentum)
		},
	})
	return s.g.record(sc.Name("FusedBatchNorm"), "BatchNorm", out), nil
}

// assignMovingAverage sets avg = avg*momentum + value*(1-momentum) in place.
func assignMovingAverage(avg, value *tensor.Tensor, momentum float32) {
	ad, vd := avg.Data(), value.Data()
	for i := range ad {
		ad[i] = ad[i]*momentum + vd[i]*(1-momentum)
	}
}

// Dropout zeroes a rate fraction of x in training and rescales the rest by
// 1/(1-rate). Outside training, or with a zero rate, it is the identity.
func Dropout(s *Scope, x *tensor.Tensor, name string, rate float32, training bool) (*tensor.Tensor, error) {
	if rate < 0 || rate >= 1 {
		return nil, fmt.Errorf("dropout %s: %w: rate %v must be in [0, 1)", s.Name(name), ErrInvalidArgument, rate)
	}
	if !training || rate == 0 {
		return s.g.record(s.Name(name), "Identity", x), nil
	}
	b := s.g.backend
	mask := b.DropoutMask(x.Shape(), rate, s.g.rng)
	return s.g.record(s.Name(name), "Dropout", b.Mul(x, mask)), nil
}
