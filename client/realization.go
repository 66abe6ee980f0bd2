package client

// RealizationState описывает, какие действия подтверждения обмена
// доступны текущему участнику. Флаги только для интерфейса,
// авторитетная проверка всегда на сервере.
type RealizationState struct {
	Status         string
	CanRealize     bool
	CanUnrealize   bool
	OtherConfirmed bool
	Message        string
}

// Тексты статусной строки подтверждения обмена
const (
	msgCanRealize     = "Вы можете подтвердить обмен"
	msgWaitingOther   = "Ожидаем подтверждения второго участника"
	msgExchangeClosed = "Обмен завершён"
)

// BuildRealizationState вычисляет состояние подтверждения из пары
// статусов. Возвращает nil, пока собственный статус неизвестен.
func BuildRealizationState(myStatus, otherStatus string) *RealizationState {
	if myStatus == "" {
		return nil
	}

	state := &RealizationState{
		Status:         myStatus,
		CanRealize:     myStatus == InterestAccepted,
		CanUnrealize:   myStatus == InterestWaiting,
		OtherConfirmed: otherStatus == InterestWaiting || otherStatus == InterestRealized,
	}

	switch {
	case myStatus == InterestAccepted:
		state.Message = msgCanRealize
	case myStatus == InterestWaiting:
		state.Message = msgWaitingOther
	case myStatus == InterestRealized && otherStatus == InterestRealized:
		state.Message = msgExchangeClosed
	}

	return state
}

// ExchangeState описывает явное совместное состояние обмена, вычисленное
// из пары статусов. Убирает разрозненные ветвления по двум полям.
type ExchangeState int

const (
	ExchangeUnknown ExchangeState = iota
	ExchangeProposed
	ExchangeMutuallyAccepted
	ExchangeWaitingOnMe
	ExchangeWaitingOnOther
	ExchangeBothRealized
	ExchangeCancelled
)

func (s ExchangeState) String() string {
	switch s {
	case ExchangeProposed:
		return "proposed"
	case ExchangeMutuallyAccepted:
		return "mutually_accepted"
	case ExchangeWaitingOnMe:
		return "waiting_on_me"
	case ExchangeWaitingOnOther:
		return "waiting_on_other"
	case ExchangeBothRealized:
		return "both_realized"
	case ExchangeCancelled:
		return "cancelled"
	}
	return "unknown"
}

// JointExchangeState сворачивает пару статусов в одно совместное
// состояние. Отмена любой из сторон перекрывает всё остальное.
func JointExchangeState(myStatus, otherStatus string) ExchangeState {
	if myStatus == InterestCancelled || otherStatus == InterestCancelled {
		return ExchangeCancelled
	}
	switch myStatus {
	case InterestProposed:
		return ExchangeProposed
	case InterestAccepted:
		if otherStatus == InterestWaiting || otherStatus == InterestRealized {
			return ExchangeWaitingOnMe
		}
		return ExchangeMutuallyAccepted
	case InterestWaiting:
		return ExchangeWaitingOnOther
	case InterestRealized:
		if otherStatus == InterestRealized {
			return ExchangeBothRealized
		}
		// Сервер переводит обе стороны в realized одной транзакцией,
		// рассинхрон здесь означает устаревшие данные
		return ExchangeWaitingOnOther
	}
	return ExchangeUnknown
}
