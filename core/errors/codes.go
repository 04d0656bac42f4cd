package errors

// ErrCode 业务错误码类型
type ErrCode int

const (
	// 通用错误 1000-1999
	ErrInvalidParameter ErrCode = 1001 // 参数错误
	ErrInvalidConfig    ErrCode = 1002 // 配置无效（启动期致命）
	ErrInternalError    ErrCode = 1003 // 内部错误
	ErrNotFound         ErrCode = 1004 // 资源未找到

	// 模型提供方相关 2000-2999
	ErrProviderCall      ErrCode = 2001 // 提供方调用失败（网络/鉴权/配额）
	ErrEmbeddingFailed   ErrCode = 2002 // Embedding失败
	ErrRerankFailed      ErrCode = 2003 // Rerank失败
	ErrLLMCallFailed     ErrCode = 2004 // 生成模型调用失败
	ErrDimensionMismatch ErrCode = 2005 // 向量维度与索引配置不一致
	ErrProviderUnknown   ErrCode = 2006 // 未注册的提供方名称

	// 文档入库相关 3000-3999
	ErrSchema          ErrCode = 3001 // 入库文档不符合 schema
	ErrIngestionFailed ErrCode = 3002 // 入库处理失败
	ErrDocumentRead    ErrCode = 3003 // 原始文档读取失败
	ErrConvertFailed   ErrCode = 3004 // 法规文本转换失败

	// 向量库相关 4000-4999
	ErrVectorStoreInit ErrCode = 4001 // 向量库初始化失败
	ErrVectorInsert    ErrCode = 4002 // 向量写入失败
	ErrRetrieval       ErrCode = 4003 // 检索失败（向量库不可达或响应异常）

	// 数据库相关 5000-5999
	ErrRegistryQuery ErrCode = 5001 // 文档登记库查询失败
	ErrRegistryWrite ErrCode = 5002 // 文档登记库写入失败
	ErrRegistryInit  ErrCode = 5003 // 文档登记库初始化失败
)

// String 返回错误码的类别名称，用于日志与对外响应
func (e ErrCode) String() string {
	switch e {
	case ErrInvalidParameter:
		return "InvalidParameterError"
	case ErrInvalidConfig:
		return "ConfigError"
	case ErrNotFound:
		return "NotFoundError"
	case ErrProviderCall, ErrEmbeddingFailed, ErrRerankFailed, ErrLLMCallFailed, ErrProviderUnknown:
		return "ProviderError"
	case ErrDimensionMismatch:
		return "DimensionMismatchError"
	case ErrSchema:
		return "SchemaError"
	case ErrIngestionFailed, ErrDocumentRead, ErrConvertFailed:
		return "IngestionError"
	case ErrVectorStoreInit, ErrVectorInsert, ErrRetrieval:
		return "RetrievalError"
	case ErrRegistryQuery, ErrRegistryWrite, ErrRegistryInit:
		return "RegistryError"
	default:
		return "InternalError"
	}
}

// HTTPStatusCode 返回错误码对应的HTTP状态码
func (e ErrCode) HTTPStatusCode() int {
	switch e {
	case ErrInvalidParameter, ErrSchema, ErrInvalidConfig:
		return 400
	case ErrNotFound:
		return 404
	default:
		return 500
	}
}
