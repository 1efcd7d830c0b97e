package scene

import (
	stdmath "math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"

	reMath "gltf-viewer/math"
)

// SensorHeight is the vertical size of the simulated film, in millimeters,
// used by SetLensProjection.
const SensorHeight = 24.0

// Exposure clamps.
const (
	minAperture    = 0.5
	maxAperture    = 64
	minShutter     = 1.0 / 25000
	maxShutter     = 60
	minSensitivity = 10
	maxSensitivity = 204800
)

// Camera is a perspective camera. The projection is kept in double precision
// and narrowed once per frame; position and orientation are float32 like the
// rest of the scene.
type Camera struct {
	Position reMath.Vec3
	Rotation reMath.Quaternion

	fovY   float64 // radians
	aspect float64
	near   float64
	far    float64
	custom bool

	aperture    float32
	shutter     float32
	sensitivity float32

	// FocusDistance is the distance to the plane in focus, in world units.
	FocusDistance float32

	// Cached matrices
	projectionD      mgl64.Mat4
	viewMatrix       reMath.Mat4
	projectionMatrix reMath.Mat4
	viewProjMatrix   reMath.Mat4
	dirty            bool
}

// NewCamera returns a camera at the origin looking down -Z with a vertical
// field of view in degrees.
func NewCamera(fovDegrees, aspectRatio, nearPlane, farPlane float64) *Camera {
	c := &Camera{
		Position:      reMath.Vec3Zero,
		Rotation:      reMath.QuaternionIdentity(),
		aperture:      16,
		shutter:       1.0 / 125,
		sensitivity:   100,
		FocusDistance: 10,
	}
	c.SetProjection(fovDegrees, aspectRatio, nearPlane, farPlane)
	return c
}

// SetProjection sets a perspective projection from a vertical field of view
// in degrees.
func (c *Camera) SetProjection(fovDegrees, aspect, near, far float64) {
	c.fovY = mgl64.DegToRad(fovDegrees)
	c.aspect = aspect
	c.near = near
	c.far = far
	c.custom = false
	c.projectionD = mgl64.Perspective(c.fovY, aspect, near, far)
	c.dirty = true
}

// SetLensProjection derives the field of view from a focal length in
// millimeters on a SensorHeight film.
func (c *Camera) SetLensProjection(focalLength, aspect, near, far float64) {
	c.SetProjection(FovFromFocalLength(focalLength), aspect, near, far)
}

// FovFromFocalLength returns the vertical field of view in degrees.
func FovFromFocalLength(focalLength float64) float64 {
	return mgl64.RadToDeg(2 * stdmath.Atan(SensorHeight/2/focalLength))
}

// SetCustomProjection installs an arbitrary projection. near and far are
// kept for callers that need the clip distances.
func (c *Camera) SetCustomProjection(p mgl64.Mat4, near, far float64) {
	c.projectionD = p
	c.near = near
	c.far = far
	c.custom = true
	c.dirty = true
}

// UpdateAspectRatio rebuilds a non-custom projection for a new viewport.
func (c *Camera) UpdateAspectRatio(width, height float64) {
	if height <= 0 || c.custom {
		return
	}
	c.SetProjection(mgl64.RadToDeg(c.fovY), width/height, c.near, c.far)
}

func (c *Camera) FieldOfView() float64 { return mgl64.RadToDeg(c.fovY) }
func (c *Camera) Aspect() float64      { return c.aspect }
func (c *Camera) Near() float64        { return c.near }
func (c *Camera) Far() float64         { return c.far }

func (c *Camera) SetPosition(pos reMath.Vec3) {
	c.Position = pos
	c.dirty = true
}

func (c *Camera) SetRotation(rot reMath.Quaternion) {
	c.Rotation = rot
	c.dirty = true
}

// LookAt places the camera at eye facing target. When eye equals target the
// current view direction is kept; when up is parallel to the view axis a
// world axis across it stands in.
func (c *Camera) LookAt(eye, target, up reMath.Vec3) {
	z := eye.Sub(target)
	if z.LengthSqr() == 0 {
		z = c.Backward()
	}
	z = z.Normalize()
	x := up.Cross(z)
	if x.LengthSqr() < 1e-12 {
		alt := reMath.Vec3Front
		if math32.Abs(z.Z) > 0.9 {
			alt = reMath.Vec3Right
		}
		x = alt.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)
	c.Position = eye
	c.Rotation = reMath.QuaternionFromMat3(reMath.Mat3FromColumns(x, y, z))
	c.dirty = true
}

// Frame moves the camera along its current view axis so the bounding sphere
// of box fills the narrower field of view, and fits near/far around it.
func (c *Camera) Frame(box reMath.Box) {
	s := box.BoundingSphere()
	r := s.Radius
	if r == 0 {
		r = 1
	}
	half := c.fovY / 2
	if c.aspect > 0 && c.aspect < 1 {
		half = stdmath.Atan(stdmath.Tan(half) * c.aspect)
	}
	dist := r / math32.Sin(float32(half))

	eye := s.Center.Add(c.Backward().Mul(dist))
	c.LookAt(eye, s.Center, reMath.Vec3Up)
	c.FocusDistance = dist
	c.fitClip(dist, r)
}

// FitClipRange sets near and far tightly around s as seen from the current
// position. Custom projections are left alone.
func (c *Camera) FitClipRange(s reMath.Sphere) {
	r := s.Radius
	if r == 0 {
		r = 1
	}
	c.fitClip(c.Position.Distance(s.Center), r)
}

func (c *Camera) fitClip(dist, r float32) {
	if c.custom {
		return
	}
	near := max(float64(dist-r), float64(r)*0.01)
	c.SetProjection(mgl64.RadToDeg(c.fovY), c.aspect, near, float64(dist+r)*1.01)
}

func (c *Camera) Forward() reMath.Vec3 {
	return c.Rotation.RotateVector(reMath.Vec3Back)
}

// Backward points from the target toward the eye (camera +Z).
func (c *Camera) Backward() reMath.Vec3 {
	return c.Rotation.RotateVector(reMath.Vec3Front)
}

func (c *Camera) Right() reMath.Vec3 {
	return c.Rotation.RotateVector(reMath.Vec3Right)
}

func (c *Camera) Up() reMath.Vec3 {
	return c.Rotation.RotateVector(reMath.Vec3Up)
}

// SetExposure sets aperture (f-stops), shutter speed (seconds) and
// sensitivity (ISO), each clamped to a physical range.
func (c *Camera) SetExposure(aperture, shutterSpeed, sensitivity float32) {
	c.aperture = clamp(aperture, minAperture, maxAperture)
	c.shutter = clamp(shutterSpeed, minShutter, maxShutter)
	c.sensitivity = clamp(sensitivity, minSensitivity, maxSensitivity)
}

// SetExposureValue sets the exposure directly: aperture 1, shutter 1.2 and
// the sensitivity that yields e (100 ISO for e = 1).
func (c *Camera) SetExposureValue(e float32) {
	c.SetExposure(1, 1.2, 100*e)
}

// Exposure is the photometric exposure 1 / (1.2 * N²/t * 100/S).
func (c *Camera) Exposure() float32 {
	n := c.aperture
	return 1 / (1.2 * n * n / c.shutter * 100 / c.sensitivity)
}

func (c *Camera) Aperture() float32     { return c.aperture }
func (c *Camera) ShutterSpeed() float32 { return c.shutter }
func (c *Camera) Sensitivity() float32  { return c.sensitivity }

// FocalLength returns the lens focal length in millimeters.
func (c *Camera) FocalLength() float64 {
	return SensorHeight / 2 / stdmath.Tan(c.fovY/2)
}

func (c *Camera) ViewMatrix() reMath.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewMatrix
}

func (c *Camera) ProjectionMatrix() reMath.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.projectionMatrix
}

// ProjectionMatrixD returns the projection at full precision.
func (c *Camera) ProjectionMatrixD() mgl64.Mat4 {
	return c.projectionD
}

func (c *Camera) ViewProjectionMatrix() reMath.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewProjMatrix
}

func (c *Camera) updateMatrices() {
	// Undo the camera placement: move the eye to the origin, then unrotate.
	c.viewMatrix = reMath.Mat4Translation(c.Position.Negate()).Mul(c.Rotation.Conjugate().ToMat4())
	c.projectionMatrix = reMath.Mat4FromMgl64(c.projectionD)
	c.viewProjMatrix = c.viewMatrix.Mul(c.projectionMatrix)
	c.dirty = false
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}

// OrbitCamera is a specialized camera for orbiting around a target
type OrbitCamera struct {
	Camera
	Target   reMath.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32
}

func NewOrbitCamera(target reMath.Vec3, distance float32, fovDegrees, aspectRatio float64) *OrbitCamera {
	c := &OrbitCamera{
		Target:   target,
		Distance: distance,
		Pitch:    0.3,
	}
	c.Camera = *NewCamera(fovDegrees, aspectRatio, 0.1, 1000.0)
	c.UpdatePosition()
	return c
}

func (c *OrbitCamera) UpdatePosition() {
	c.Pitch = clamp(c.Pitch, -1.5, 1.5)

	cosPitch, sinPitch := math32.Cos(c.Pitch), math32.Sin(c.Pitch)
	cosYaw, sinYaw := math32.Cos(c.Yaw), math32.Sin(c.Yaw)

	offset := reMath.Vec3{
		X: c.Distance * cosPitch * sinYaw,
		Y: c.Distance * sinPitch,
		Z: c.Distance * cosPitch * cosYaw,
	}
	c.LookAt(c.Target.Add(offset), c.Target, reMath.Vec3Up)
}

// SetFromEye places the orbit so the camera sits at eye looking at target.
func (c *OrbitCamera) SetFromEye(eye, target reMath.Vec3) {
	offset := eye.Sub(target)
	c.Target = target
	c.Distance = max(offset.Length(), 0.1)
	c.Yaw = math32.Atan2(offset.X, offset.Z)
	c.Pitch = math32.Asin(clamp(offset.Y/c.Distance, -1, 1))
	c.UpdatePosition()
}

func (c *OrbitCamera) Orbit(deltaYaw, deltaPitch float32) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch
	c.UpdatePosition()
}

func (c *OrbitCamera) Zoom(delta float32) {
	c.Distance = max(c.Distance+delta, 0.1)
	c.UpdatePosition()
}
