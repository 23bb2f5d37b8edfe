package model

// ReplyTemplate is a canned referral reply.
type ReplyTemplate struct {
	ID     int    `json:"id" yaml:"id"`
	Nombre string `json:"nombre" yaml:"nombre"`
	Asunto string `json:"asunto" yaml:"asunto"`
	Cuerpo string `json:"cuerpo" yaml:"cuerpo"`
}

type ReplyRequest struct {
	PlantillaID *int   `json:"plantilla_id"`
	Asunto      string `json:"asunto"`
	Cuerpo      string `json:"cuerpo"`
}

// Reply is a rendered message ready to be sent.
type Reply struct {
	PacienteID  int64  `json:"paciente_id"`
	Para        string `json:"para"`
	Asunto      string `json:"asunto"`
	Cuerpo      string `json:"cuerpo"`
	PlantillaID *int   `json:"plantilla_id,omitempty"`
}
