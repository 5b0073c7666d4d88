package pipeline

// NormalizerConfig configures a Normalizer. Zero values select defaults.
type NormalizerConfig struct {
	// MaxIterations caps the rewrites of each pass.
	MaxIterations int
	// Emoticons extends or overrides the built-in emoticon table.
	Emoticons map[string]string
	// Residue cleans macro bodies. Nil uses a default cleaner.
	Residue *ResidueCleaner
}

// Normalizer rewrites Confluence custom elements (ac:, ri:) into Markdown or
// plain markup in seven fixed passes. It holds no mutable state and is safe
// for concurrent use.
type Normalizer struct {
	maxIterations int
	emoticons     map[string]string
	residue       *ResidueCleaner
}

// NewNormalizer creates a Normalizer from cfg.
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	n := &Normalizer{
		maxIterations: cfg.MaxIterations,
		emoticons:     mergeEmoticons(cfg.Emoticons),
		residue:       cfg.Residue,
	}
	if n.maxIterations <= 0 {
		n.maxIterations = DefaultMaxIterations
	}
	if n.residue == nil {
		n.residue = NewResidueCleaner(0)
	}
	return n
}

// pass is one named normalizer rewrite.
type pass struct {
	name   string
	render func(frags *Fragments) func(block string) string
}

// Normalize runs the seven passes over markup. Rendered Markdown is stored in
// frags and replaced by tokens; with nil frags it is inlined. The returned
// stats hold one entry per scan.
func (n *Normalizer) Normalize(markup string, frags *Fragments) (string, []PassStats) {
	passes := []pass{
		{"ac:emoticon", n.emoticon},
		{"ac:image", n.image},
		{"ac:link", n.link},
		{"ac:structured-macro", n.macro},
		{"ac:task-list", n.taskList},
		{"ac:adf-extension", n.extension},
	}

	stats := make([]PassStats, 0, len(passes)+len(bookkeepingContainers)+1)
	for _, p := range passes {
		var st PassStats
		markup, st = replaceElements(markup, p.name, n.maxIterations, p.render(frags))
		stats = append(stats, st)
	}
	markup, residual := removeResidual(markup, n.maxIterations)
	return markup, append(stats, residual...)
}

func (n *Normalizer) emoticon(frags *Fragments) func(string) string {
	return func(block string) string {
		return renderEmoticon(n.emoticons, block).emit(frags)
	}
}

func (n *Normalizer) image(frags *Fragments) func(string) string {
	return func(block string) string {
		return renderImage(block).emit(frags)
	}
}

func (n *Normalizer) link(frags *Fragments) func(string) string {
	return func(block string) string {
		return renderLink(block).emit(frags)
	}
}

func (n *Normalizer) macro(frags *Fragments) func(string) string {
	return func(block string) string {
		return n.renderMacro(block, frags).emit(frags)
	}
}

func (n *Normalizer) taskList(frags *Fragments) func(string) string {
	return func(block string) string {
		return renderTaskList(block, n.maxIterations).emit(frags)
	}
}

func (n *Normalizer) extension(frags *Fragments) func(string) string {
	return func(block string) string {
		return renderExtension(block).emit(frags)
	}
}
