// SPDX-License-Identifier: EPL-2.0

// Package geom holds the vector and quaternion maths used for listener and
// source poses.
//
// The coordinate system is left-handed with +X right, +Y up and +Z forward.
// Euler angles are in degrees: positive yaw turns toward +X, positive pitch
// looks up and positive roll tilts the top of the head toward +X. Rotations
// are stored as unit quaternions to avoid gimbal lock; the forward/up and
// Euler forms are converted on the way in.
package geom
