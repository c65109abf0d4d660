// Package motion is the root of the motion-analysis layer model.
//
// Layers, leaf to root:
//
//	l1pose      keypoints and pose frames supplied by an external estimator
//	l2angles    joint and posture angles (geometry engine)
//	l3signal    bounded histories, smoothing and rolling statistics
//	l4reps      repetition counting, exercise table, posture rules
//	l5sequence  recorded angle sequences and their blob codec
//	l6compare   DTW alignment, scoring and live feedback
//
// The session, pipeline and storage/sqlite packages sit on top of the
// layers. A layer may only import layers below it. SQL lives exclusively in
// storage/sqlite and internal/db.
package motion
