package primitives

// InvokeConfig declares a service invoked while the node is active.
//
// Src is either a string naming a service registered in the machine's
// ServiceTable, or an anonymous implementation. Anonymous implementations are
// registered under the generated invocation id when the node is built.
type InvokeConfig struct {
	ID          string             `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Src         any                `json:"src" yaml:"src" mapstructure:"src"`
	Data        map[string]any     `json:"data,omitempty" yaml:"data,omitempty" mapstructure:"data"`
	AutoForward bool               `json:"autoForward,omitempty" yaml:"autoForward,omitempty" mapstructure:"autoForward"`
	OnDone      []TransitionConfig `json:"onDone,omitempty" yaml:"onDone,omitempty" mapstructure:"onDone"`
	OnError     []TransitionConfig `json:"onError,omitempty" yaml:"onError,omitempty" mapstructure:"onError"`
}
