// Package camerapath flies a camera around a circular path while it keeps
// looking at a target object.
package camerapath

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/starstage/internal/logging"
	"github.com/san-kum/starstage/internal/scene"
)

const (
	DefaultCamera   = "Camera"
	DefaultPath     = "Camera-Path"
	DefaultTarget   = "Camera-TrackTo"
	DefaultRadius   = 5
	DefaultStart    = 0
	DefaultDuration = 600

	FollowPathName = "Follow Path"
	TrackToName    = "Track To"

	// PathDuration is the eval_time span of one full lap.
	PathDuration = 100
	EvalTimePath = "eval_time"

	targetSize = 0.1
)

// DefaultPathLocation lifts the path one unit above the target.
var DefaultPathLocation = mgl32.Vec3{0, 0, 1}

// AddPath adds a circular path of the given radius centred at location.
// The path runs clockwise seen from above.
func AddPath(doc *scene.Document, name string, radius float32, location mgl32.Vec3) (*scene.Object, error) {
	if _, ok := doc.Objects[name]; ok {
		return nil, fmt.Errorf("%w: object %q", scene.ErrDuplicateName, name)
	}
	curve := &scene.Curve{
		Name:         name,
		Kind:         scene.CurveBezierCircle,
		Radius:       radius,
		Reversed:     true,
		PathDuration: PathDuration,
	}
	obj := &scene.Object{
		Name:     name,
		Type:     scene.TypeCurve,
		Location: location,
		Data:     doc.AddCurve(curve),
	}
	if err := doc.AddObject(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// AddTarget adds a small empty for the camera to look at. It is hidden
// from renders.
func AddTarget(doc *scene.Document, name string, location mgl32.Vec3) (*scene.Object, error) {
	obj := &scene.Object{
		Name:       name,
		Type:       scene.TypeEmpty,
		Location:   location,
		EmptySize:  targetSize,
		HideRender: true,
	}
	if err := doc.AddObject(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// EnsureCamera returns the named camera, adding one at the origin when the
// document has none.
func EnsureCamera(doc *scene.Document, name string) (*scene.Object, error) {
	if _, ok := doc.Objects[name]; ok {
		return doc.ObjectOfType(name, scene.TypeCamera)
	}
	obj := &scene.Object{Name: name, Type: scene.TypeCamera}
	if err := doc.AddObject(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// Animate attaches the camera to the path and keys one lap from start to
// start+duration. Earlier eval_time animation of the path is discarded.
func Animate(doc *scene.Document, camera, path, target string, start, duration float32, logger *log.Logger) error {
	logger = logging.Or(logger)

	cam, err := doc.ObjectOfType(camera, scene.TypeCamera)
	if err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	pathObj, err := doc.ObjectOfType(path, scene.TypeCurve)
	if err != nil {
		return fmt.Errorf("path: %w", err)
	}
	curve, err := doc.CurveOf(pathObj)
	if err != nil {
		return fmt.Errorf("path: %w", err)
	}
	if _, err := doc.Object(target); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g", duration)
	}

	cam.Location = mgl32.Vec3{}
	cam.SetConstraint(scene.Constraint{
		Name:   FollowPathName,
		Type:   scene.ConstraintFollowPath,
		Target: path,
	})
	cam.SetConstraint(scene.Constraint{
		Name:      TrackToName,
		Type:      scene.ConstraintTrackTo,
		Target:    target,
		TrackAxis: "TRACK_NEGATIVE_Z",
		UpAxis:    "UP_Y",
	})

	curve.UsePath = true
	removed := 0
	for _, owner := range []scene.Animated{pathObj, curve} {
		if a := doc.Action(owner); a != nil {
			removed += a.RemoveFCurves(EvalTimePath)
		}
	}

	end := start + duration
	curve.PathDuration = PathDuration
	doc.InsertKeyframe(curve, EvalTimePath, 0, start, 0)
	doc.InsertKeyframe(curve, EvalTimePath, 0, end, PathDuration)
	curve.EvalTime = PathDuration
	doc.ExtendFrameEnd(int(math32.Ceil(end)))

	logger.Info("camera animated", "camera", camera, "path", path, "target", target,
		"start", start, "end", end, "replaced_curves", removed)
	return nil
}

// Pose is where a camera is and which way it faces. Rotation turns the
// camera's -Z axis towards the target with +Y up.
type Pose struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// Forward is the viewing direction.
func (p Pose) Forward() mgl32.Vec3 {
	return p.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

// Evaluate resolves the camera constraints at frame.
func Evaluate(doc *scene.Document, camera string, frame float32) (Pose, error) {
	cam, err := doc.ObjectOfType(camera, scene.TypeCamera)
	if err != nil {
		return Pose{}, err
	}
	pose := Pose{Position: cam.Location, Rotation: cam.Rotation}

	if c := cam.Constraint(FollowPathName); c != nil {
		pathObj, err := doc.ObjectOfType(c.Target, scene.TypeCurve)
		if err != nil {
			return Pose{}, err
		}
		curve, err := doc.CurveOf(pathObj)
		if err != nil {
			return Pose{}, err
		}
		pose.Position = pathObj.Location.Add(PointAt(doc, curve, frame)).Add(cam.Location)
	}

	if c := cam.Constraint(TrackToName); c != nil {
		target, err := doc.Object(c.Target)
		if err != nil {
			return Pose{}, err
		}
		pose.Rotation = lookAt(pose.Position, target.Location)
	}
	return pose, nil
}

// PointAt is the offset along curve at frame, relative to the path object.
func PointAt(doc *scene.Document, curve *scene.Curve, frame float32) mgl32.Vec3 {
	t := curve.EvalTime
	if curve.UsePath {
		t = doc.Evaluate(curve, EvalTimePath, 0, frame, curve.EvalTime)
	}
	u := float32(0)
	if curve.PathDuration > 0 {
		u = math32.Max(0, math32.Min(1, t/curve.PathDuration))
	}
	angle := 2 * math32.Pi * u
	if curve.Reversed {
		angle = -angle
	}
	return mgl32.Vec3{curve.Radius * math32.Cos(angle), curve.Radius * math32.Sin(angle), 0}
}

func lookAt(eye, center mgl32.Vec3) mgl32.Quat {
	f := center.Sub(eye)
	if f.Len() < 1e-6 {
		return mgl32.QuatIdent()
	}
	f = f.Normalize()
	up := mgl32.Vec3{0, 0, 1}
	if math32.Abs(f.Dot(up)) > 0.9999 {
		up = mgl32.Vec3{0, 1, 0}
	}
	right := f.Cross(up).Normalize()
	u := right.Cross(f)
	return mgl32.Mat4ToQuat(mgl32.Mat3FromCols(right, u, f.Mul(-1)).Mat4()).Normalize()
}
