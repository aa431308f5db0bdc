// Package kinematics extracts raw per-frame kinematic channels from a pose
// sequence: body-centre-relative joint velocities, wrist radial velocity,
// joint angles, body orientation and its frame-to-frame change.
package kinematics

import (
	"github.com/ayusman/swingscope/internal/pose"
	"github.com/ayusman/swingscope/internal/signal"
)

// Channel names.
const (
	LeftWristVelocity     = "leftWristVelocity"
	RightWristVelocity    = "rightWristVelocity"
	LeftElbowVelocity     = "leftElbowVelocity"
	RightElbowVelocity    = "rightElbowVelocity"
	LeftShoulderVelocity  = "leftShoulderVelocity"
	RightShoulderVelocity = "rightShoulderVelocity"
	LeftHipVelocity       = "leftHipVelocity"
	RightHipVelocity      = "rightHipVelocity"
	LeftKneeVelocity      = "leftKneeVelocity"
	RightKneeVelocity     = "rightKneeVelocity"
	LeftAnkleVelocity     = "leftAnkleVelocity"
	RightAnkleVelocity    = "rightAnkleVelocity"

	WristVelocity  = "wristVelocity"
	RadialVelocity = "radialVelocity"

	BodyOrientation     = "bodyOrientation"
	OrientationVelocity = "orientationVelocity"

	LeftKneeBend       = "leftKneeBend"
	RightKneeBend      = "rightKneeBend"
	LeftElbowAngle     = "leftElbowAngle"
	RightElbowAngle    = "rightElbowAngle"
	LeftShoulderAngle  = "leftShoulderAngle"
	RightShoulderAngle = "rightShoulderAngle"
	LeftHipAngle       = "leftHipAngle"
	RightHipAngle      = "rightHipAngle"

	SwingScore = "swingScore"
)

type velocitySpec struct {
	name  string
	joint pose.Joint
}

var velocityChannels = []velocitySpec{
	{LeftWristVelocity, pose.LeftWrist},
	{RightWristVelocity, pose.RightWrist},
	{LeftElbowVelocity, pose.LeftElbow},
	{RightElbowVelocity, pose.RightElbow},
	{LeftShoulderVelocity, pose.LeftShoulder},
	{RightShoulderVelocity, pose.RightShoulder},
	{LeftHipVelocity, pose.LeftHip},
	{RightHipVelocity, pose.RightHip},
	{LeftKneeVelocity, pose.LeftKnee},
	{RightKneeVelocity, pose.RightKnee},
	{LeftAnkleVelocity, pose.LeftAnkle},
	{RightAnkleVelocity, pose.RightAnkle},
}

type angleSpec struct {
	name      string
	a, vertex pose.Joint
	c         pose.Joint
}

var angleChannels = []angleSpec{
	{LeftKneeBend, pose.LeftHip, pose.LeftKnee, pose.LeftAnkle},
	{RightKneeBend, pose.RightHip, pose.RightKnee, pose.RightAnkle},
	{LeftElbowAngle, pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist},
	{RightElbowAngle, pose.RightShoulder, pose.RightElbow, pose.RightWrist},
	{LeftShoulderAngle, pose.LeftElbow, pose.LeftShoulder, pose.LeftHip},
	{RightShoulderAngle, pose.RightElbow, pose.RightShoulder, pose.RightHip},
	{LeftHipAngle, pose.LeftShoulder, pose.LeftHip, pose.LeftKnee},
	{RightHipAngle, pose.RightShoulder, pose.RightHip, pose.RightKnee},
}

func newChannelSet(n int) *signal.Set {
	set := signal.NewSet(n)
	for _, v := range velocityChannels {
		set.Add(v.name, signal.UnitPxPerFrame, false)
	}
	set.Add(WristVelocity, signal.UnitPxPerFrame, false)
	set.Add(RadialVelocity, signal.UnitPxPerFrame, false)
	set.Add(BodyOrientation, signal.UnitDegrees, true)
	set.Add(OrientationVelocity, signal.UnitDegPerFrame, false)
	for _, a := range angleChannels {
		set.Add(a.name, signal.UnitDegrees, false)
	}
	set.Add(SwingScore, signal.UnitScore, false)
	return set
}
