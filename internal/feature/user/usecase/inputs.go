package usecase

// CreateUserInput はユーザー登録の入力です。
type CreateUserInput struct {
	Email string
	Name  string
}

// UpdateUserInput はユーザー更新の入力です。Nameがnilの場合は何も変更しません。
type UpdateUserInput struct {
	Name *string
}
