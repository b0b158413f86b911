package registration

// User-facing messages. The screen is Portuguese-only.
const (
	MsgNameRequired  = "Nome é obrigatório"
	MsgNameTooShort  = "Nome deve ter pelo menos 3 caracteres"
	MsgNameLetters   = "Nome deve conter apenas letras e espaços"
	MsgAgeRequired   = "Idade é obrigatória"
	MsgAgeNotInteger = "Idade deve ser um número inteiro"
	MsgAgeMin        = "Idade mínima é 18 anos"
	MsgAgeMax        = "Idade máxima é 120 anos"
	MsgRoleRequired  = "Cargo é obrigatório"
	MsgRoleTooShort  = "Cargo deve ter pelo menos 2 caracteres"
	MsgCEPRequired   = "CEP é obrigatório"
	MsgCEPFormat     = "CEP deve ter 8 dígitos"

	MsgCEPNotFound         = "CEP não encontrado"
	MsgCEPLookupFailed     = "Não foi possível encontrar o CEP"
	MsgCEPLookupFieldError = "Não foi possível consultar o CEP"
	MsgCEPUnavailable      = "Serviço de CEP indisponível. Tente novamente mais tarde."

	MsgFixErrors        = "Preencha todos os campos corretamente"
	MsgResolveAddress   = "Busque o endereço pelo CEP antes de cadastrar"
	MsgPermissionDenied = "Permissão negada. Você não tem acesso para cadastrar usuários."
	MsgStoreUnavailable = "Serviço indisponível. Tente novamente mais tarde."
	MsgWriteFailed      = "Erro ao cadastrar usuário. Tente novamente."
	MsgCreated          = "Usuário cadastrado com sucesso!"

	MsgSignOutFailed = "Não foi possível sair. Tente novamente."
)
