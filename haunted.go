package hauntedhouse

import (
	"math"
	"math/rand"
)

// NightSky is both the clear colour and the fog colour.
var NightSky = MustHex("#262837")

// Asset paths, relative to Config.AssetRoot.
const (
	doorColorPath        = "/textures/door/horror.avif"
	doorAlphaPath        = "/textures/door/alpha.jpg"
	doorAOPath           = "/textures/door/ambientOcclusion.jpg"
	doorHeightPath       = "/textures/door/height.jpg"
	doorNormalPath       = "/textures/door/normal.jpg"
	doorMetalnessPath    = "/textures/door/metalness.jpg"
	doorRoughnessPath    = "/textures/door/roughness.jpg"
	bricksColorPath      = "/textures/bricks/color1.jpg"
	bricksAOPath         = "/textures/bricks/ambientOcclusion.jpg"
	bricksNormalPath     = "/textures/bricks/normal.jpg"
	bricksRoughnessPath  = "/textures/bricks/roughness.jpg"
	grassColorPath       = "/textures/grass/roughness.jpg"
	grassAOPath          = "/textures/grass/ambientOcclusion.jpg"
	grassNormalPath      = "/textures/grass/normal.jpg"
	grassRoughnessPath   = "/textures/grass/roughness.jpg"
	bushModelPath        = "textures/tree_scan_free/scene.gltf"
	fallbackTextureSize  = 64
	doorDisplacementSize = 0.1
)

type TextureSource interface {
	Load(path string) *Future[*Texture]
}

type ModelSource interface {
	Load(path string) *Future[*Node]
}

// World is everything the render loop touches.
type World struct {
	Scene  *Scene
	Camera *PerspectiveCamera

	House     *Node
	Walls     *Node
	Roof      *Node
	Door      *Node
	DoorLight *Node
	Graves    *Node
	Floor     *Node

	Moon      *Node
	MoonLight *DirectionalLight
	Ghosts    [3]*Node
	Bushes    []*Node
}

// UpdateGhosts moves the ghost lights to where they are at elapsed seconds.
func (w *World) UpdateGhosts(elapsed float64) {
	for i, p := range GhostPositions(elapsed) {
		w.Ghosts[i].Position = p
	}
}

// sceneBuilder wires asset loads to the nodes that will use them.
type sceneBuilder struct {
	cfg      Config
	textures TextureSource
	models   ModelSource
	queue    *AssetQueue
	log      Logger
	fallback int64
}

// texture requests path and hands the result to apply once Poll runs. When
// tint is non-nil a failed load is replaced by tinted noise.
func (b *sceneBuilder) texture(path string, tint *Color, apply func(*Texture)) {
	Enqueue(b.queue, b.textures.Load(path), apply, func(err error) {
		if tint == nil {
			b.log.Warnf("texture %s unavailable: %v", path, err)
			return
		}
		b.log.Warnf("texture %s unavailable, using noise: %v", path, err)
		b.fallback++
		apply(NewNoiseTexture(path, b.cfg.Seed+b.fallback, fallbackTextureSize, *tint))
	})
}

// BuildHauntedHouse assembles the scene and queues its asset loads. Nothing
// is attached until queue.Poll runs.
func BuildHauntedHouse(cfg Config, textures TextureSource, models ModelSource, queue *AssetQueue, log Logger) *World {
	b := &sceneBuilder{cfg: cfg, textures: textures, models: models, queue: queue, log: orNop(log)}
	w := &World{Scene: NewScene()}
	w.Scene.Fog = &Fog{Color: NightSky, Near: 1, Far: 30}

	w.House = NewGroup("house")
	w.Scene.Add(w.House)

	// Walls
	wallsMat := NewStandardMaterial("walls", White)
	w.Walls = NewMeshNode("walls", NewBoxMesh(4, 2.5, 4), wallsMat)
	w.Walls.Position[1] = 1.25
	w.House.Add(w.Walls)
	brick := MustHex("#8a4b3a")
	b.texture(bricksColorPath, &brick, func(t *Texture) { wallsMat.Map = t })
	b.texture(bricksAOPath, nil, func(t *Texture) { wallsMat.AOMap = t })
	b.texture(bricksNormalPath, nil, func(t *Texture) { wallsMat.NormalMap = t })
	b.texture(bricksRoughnessPath, nil, func(t *Texture) { wallsMat.RoughnessMap = t })

	// Roof
	w.Roof = NewMeshNode("roof", NewConeMesh(3.5, 1, 4), NewStandardMaterial("roof", MustHex("#131412")))
	w.Roof.Rotation[1] = math.Pi * 0.25
	w.Roof.Position[1] = 3
	w.House.Add(w.Roof)

	// Door
	doorMat := NewStandardMaterial("door", White)
	doorMat.Transparent = true
	doorMat.DisplacementScale = doorDisplacementSize
	doorMesh := NewPlaneMesh(2, 2, cfg.DoorSegments, cfg.DoorSegments)
	w.Door = NewMeshNode("door", doorMesh, doorMat)
	w.Door.Position[1] = 1
	w.Door.Position[2] = 2.05
	w.House.Add(w.Door)
	wood := MustHex("#6b4a32")
	b.texture(doorColorPath, &wood, func(t *Texture) { doorMat.Map = t })
	b.texture(doorAlphaPath, nil, func(t *Texture) { doorMat.AlphaMap = t })
	b.texture(doorAOPath, nil, func(t *Texture) { doorMat.AOMap = t })
	b.texture(doorHeightPath, nil, func(t *Texture) {
		doorMat.DisplacementMap = t
		DisplaceMesh(doorMesh, t, doorMat.DisplacementScale)
	})
	b.texture(doorNormalPath, nil, func(t *Texture) { doorMat.NormalMap = t })
	b.texture(doorMetalnessPath, nil, func(t *Texture) { doorMat.MetalnessMap = t })
	b.texture(doorRoughnessPath, nil, func(t *Texture) { doorMat.RoughnessMap = t })

	// Door light
	w.DoorLight = NewLightNode("door light", NewPointLight(MustHex("#ff7d46"), 2, 7))
	w.DoorLight.SetPosition(0, 2.2, 2.7)
	w.House.Add(w.DoorLight)

	// Bushes
	for i, pos := range [][3]float64{{5, 1.8, -3.2}, {-3, 1.8, 3.2}} {
		Enqueue(queue, models.Load(bushModelPath), func(bush *Node) {
			bush.Name = "bush"
			bush.SetScale(0.1, 0.1, 0.1)
			bush.SetPosition(pos[0], pos[1], pos[2])
			bush.SetCastShadowDeep(true)
			w.House.Add(bush)
			w.Bushes = append(w.Bushes, bush)
			b.log.Infof("bush %d attached (%d faces)", i+1, bush.FaceCount())
		}, func(err error) {
			b.log.Warnf("bush %d not loaded: %v", i+1, err)
		})
	}

	// Graves
	w.Graves = NewGroup("graves")
	w.Scene.Add(w.Graves)
	graveMesh := NewBoxMesh(0.6, 0.8, 0.2)
	graveMat := NewStandardMaterial("grave", MustHex("#999090"))
	rng := rand.New(rand.NewSource(cfg.Seed))
	for i := 0; i < cfg.GraveCount; i++ {
		angle := rng.Float64() * math.Pi * 2
		radius := 3 + rng.Float64()*6

		grave := NewMeshNode("grave", graveMesh, graveMat)
		grave.SetPosition(math.Cos(angle)*radius, 0.4, math.Sin(angle)*radius)
		grave.Rotation[2] = (rng.Float64() - 0.5) * 0.4
		grave.Rotation[1] = (rng.Float64() - 0.5) * 0.4
		grave.CastShadow = true
		w.Graves.Add(grave)
	}

	// Floor, split up so fog varies across it
	floorMat := NewStandardMaterial("grass", White)
	floorMat.Side = DoubleSide
	w.Floor = NewMeshNode("floor", NewPlaneMesh(20, 20, 20, 20), floorMat)
	w.Floor.Rotation[0] = -math.Pi * 0.5
	w.Floor.ReceiveShadow = true
	w.Floor.DrawFirst = true
	w.Scene.Add(w.Floor)
	grass := MustHex("#3b5e2b")
	b.texture(grassColorPath, &grass, func(t *Texture) { floorMat.Map = t })
	b.texture(grassAOPath, nil, func(t *Texture) { floorMat.AOMap = t })
	b.texture(grassNormalPath, nil, func(t *Texture) { floorMat.NormalMap = t })
	b.texture(grassRoughnessPath, nil, func(t *Texture) { floorMat.RoughnessMap = t })

	// Lights
	w.Scene.Add(NewLightNode("ambient", &AmbientLight{Color: White, Intensity: 0.5}))
	w.MoonLight = &DirectionalLight{Color: White, Intensity: 0.5, CastShadow: true}
	w.Moon = NewLightNode("moon", w.MoonLight)
	w.Moon.SetPosition(6, 5, -3)
	w.Scene.Add(w.Moon)

	// Ghosts
	for i, hex := range []string{"#ff00ff", "#00ffff", "#ffff00"} {
		w.Ghosts[i] = NewLightNode("ghost", NewPointLight(MustHex(hex), 2, 3))
		w.Scene.Add(w.Ghosts[i])
	}
	w.UpdateGhosts(0)

	// Camera
	w.Camera = NewPerspectiveCamera(75, float64(cfg.Width)/float64(cfg.Height), 0.1, 100)
	w.Camera.SetPosition(4, 2, 5)

	b.log.Infof("scene built: %d faces, %d graves, %d assets queued", w.Scene.Root.FaceCount(), cfg.GraveCount, queue.Pending())
	return w
}
