package api

// Caller-facing messages. Credential failures deliberately share one generic
// message so the response never reveals whether a username exists.
const (
	MsgMissingCredentials   = "Usuário e senha são obrigatórios."
	MsgWrongCredentials     = "Usuário ou senha incorretos."
	MsgSessionCreateFailed  = "Erro ao criar sessão. Tente novamente."
	MsgMissingToken         = "Token ausente."
	MsgSessionInvalid       = "Sessão inválida ou expirada."
	MsgMissingTokenAction   = "Token e action obrigatórios."
	MsgInvalidAction        = "Action inválida."
	MsgUnauthorized         = "Não autorizado"
	MsgMissingClientFields  = "Username, senha e nome são obrigatórios."
	MsgUsernameTaken        = "Este username já está em uso."
	MsgMissingClientID      = "ID do cliente é obrigatório."
	MsgClientNotFound       = "Cliente não encontrado."
	MsgNothingToUpdate      = "Nenhum campo para atualizar."
	MsgSelfDelete           = "Você não pode excluir seu próprio usuário."
	MsgMissingSessionClient = "clientId obrigatório"
	MsgMissingPasswords     = "Senha atual e nova senha são obrigatórias."
	MsgWrongCurrentPassword = "Senha atual incorreta."
	MsgInvalidDate          = "Data inválida."
	MsgInternalError        = "Erro interno do servidor."
)
